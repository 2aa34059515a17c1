package descriptor

import (
	"fmt"
)

// Handler names the builder that fills one prop of a statement from a
// normalized line. The set is closed; descriptor files naming anything
// else fail to load.
type Handler uint8

const (
	HInvalid Handler = iota
	HNode
	HValue
	HModelName
	HControlDeviceValue
	HControlDeviceList
	HValueExpression
	HTableExpression
	HPolyExpression
	HVoltageExpression
	HCurrentExpression
	HACValue
	HDCValue
	HTransient
	HSubcircuitName
	HSubcircuitParams
	HParamsList
	HNodeList
	HInterfaceNodeList
	HSweep
	HSchedule
	HValueList
	HDataList
	HFileName
	HLibEntry
	HOptionPackage
	HOutputVariables
	HFuncArgList
	HFuncExpression
	HInitialConditions
	HMeasurement
	HAnalysisType
)

var handlerNames = [...]string{
	HInvalid:            "invalid",
	HNode:               "node",
	HValue:              "value",
	HModelName:          "modelName",
	HControlDeviceValue: "controlDeviceValue",
	HControlDeviceList:  "controlDeviceList",
	HValueExpression:    "valueExpression",
	HTableExpression:    "tableExpression",
	HPolyExpression:     "polyExpression",
	HVoltageExpression:  "voltageExpression",
	HCurrentExpression:  "currentExpression",
	HACValue:            "acValue",
	HDCValue:            "dcValue",
	HTransient:          "transient",
	HSubcircuitName:     "subcircuitNameValue",
	HSubcircuitParams:   "subcircuitParamsList",
	HParamsList:         "paramsList",
	HNodeList:           "nodeList",
	HInterfaceNodeList:  "interfaceNodeList",
	HSweep:              "sweep",
	HSchedule:           "scheduleValue",
	HValueList:          "valueList",
	HDataList:           "dataList",
	HFileName:           "fileNameValue",
	HLibEntry:           "libEntry",
	HOptionPackage:      "optionPkgTypeValue",
	HOutputVariables:    "outputVariableList",
	HFuncArgList:        "funcArgList",
	HFuncExpression:     "funcExpression",
	HInitialConditions:  "initialConditionsList",
	HMeasurement:        "measurementTypeValue",
	HAnalysisType:       "analysisTypeValue",
}

func (h Handler) String() string {
	if int(h) < len(handlerNames) {
		return handlerNames[h]
	}
	return "invalid"
}

// ParseHandler resolves a handler name from a descriptor file.
func ParseHandler(s string) (Handler, error) {
	for i, n := range handlerNames {
		if i != int(HInvalid) && n == s {
			return Handler(i), nil
		}
	}
	return HInvalid, fmt.Errorf("unknown prop handler %q", s)
}

func (h *Handler) UnmarshalText(b []byte) error {
	v, err := ParseHandler(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func (h Handler) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// Render names the text fragment a prop is written as.
type Render uint8

const (
	RDefault Render = iota
	// RValue writes the value; binned model references keep only the root.
	RValue
	// RString writes the value verbatim.
	RString
	RKeyValue
	RBracketed
	RControlDevice
	RValueExpression
	RVoltageExpression
	RCurrentExpression
	RSubcircuitParams
	RDataList
	RFuncArgs
	ROptionPackage
	RModelLevel
	RSkip
)

var renderNames = [...]string{
	RDefault:           "",
	RValue:             "value",
	RString:            "string",
	RKeyValue:          "pair",
	RBracketed:         "bracketedValue",
	RControlDevice:     "controlDevice",
	RValueExpression:   "valueExpression",
	RVoltageExpression: "voltageExpression",
	RCurrentExpression: "currentExpression",
	RSubcircuitParams:  "subcircuitParamsList",
	RDataList:          "dataList",
	RFuncArgs:          "funcArgList",
	ROptionPackage:     "optionPackageTypeValue",
	RModelLevel:        "modelLevel",
	RSkip:              "skip",
}

func (r Render) String() string {
	if int(r) < len(renderNames) {
		return renderNames[r]
	}
	return "invalid"
}

func ParseRender(s string) (Render, error) {
	for i, n := range renderNames {
		if n == s {
			return Render(i), nil
		}
	}
	return RDefault, fmt.Errorf("unknown render kind %q", s)
}

func (r *Render) UnmarshalText(b []byte) error {
	v, err := ParseRender(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r Render) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// DefaultRender returns the render kind used when a prop does not set one.
func (h Handler) DefaultRender() Render {
	switch h {
	case HValueExpression:
		return RValueExpression
	case HVoltageExpression:
		return RVoltageExpression
	case HCurrentExpression:
		return RCurrentExpression
	case HSubcircuitParams, HParamsList:
		return RSubcircuitParams
	case HDataList:
		return RDataList
	case HFuncArgList:
		return RFuncArgs
	case HOptionPackage:
		return ROptionPackage
	case HModelName, HValue:
		return RValue
	case HControlDeviceValue, HControlDeviceList:
		return RControlDevice
	default:
		return RString
	}
}
