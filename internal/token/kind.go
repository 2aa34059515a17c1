package token

// Kind is a semantic tag attached to a token by a tokenizer. The same
// vocabulary keys the known-object map of a normalized line and the prop
// roles of dialect descriptors, so a value keeps its tag from the tokenizer
// down to the writer.
type Kind string

const (
	Invalid Kind = ""

	// line heads
	DeviceType    Kind = "DEVICE_TYPE"
	DeviceName    Kind = "DEVICE_NAME"
	DirectiveName Kind = "DIRECTIVE_NAME"
	Title         Kind = "TITLE"
	Comment       Kind = "COMMENT"
	InlineComment Kind = "INLINE_COMMENT"
	RestOfLine    Kind = "REST_OF_LINE"

	// models
	ModelName     Kind = "MODEL_NAME"
	ModelType     Kind = "MODEL_TYPE"
	VBICModel     Kind = "VBIC_MODEL"
	VBICModelName Kind = "VBIC_MODEL_NAME"

	// free-form parameters
	ParamName       Kind = "PARAM_NAME"
	ParamValue      Kind = "PARAM_VALUE"
	StandaloneParam Kind = "STANDALONE_PARAM"
	ParamsHeader    Kind = "PARAMS_HEADER"

	// terminals
	PosNode            Kind = "POSNODE"
	NegNode            Kind = "NEGNODE"
	PosControlNode     Kind = "POSCONTROLNODE"
	NegControlNode     Kind = "NEGCONTROLNODE"
	DrainNode          Kind = "DRAINNODE"
	GateNode           Kind = "GATENODE"
	SourceNode         Kind = "SOURCENODE"
	SubstrateNode      Kind = "SUBSTRATENODE"
	CollectorNode      Kind = "COLLECTORNODE"
	BaseNode           Kind = "BASENODE"
	EmitterNode        Kind = "EMITTERNODE"
	ThermalNode        Kind = "THERMALNODE"
	TemperatureNode    Kind = "TEMPERATURENODE"
	APortPosNode       Kind = "APORTPOSNODE"
	APortNegNode       Kind = "APORTNEGNODE"
	BPortPosNode       Kind = "BPORTPOSNODE"
	BPortNegNode       Kind = "BPORTNEGNODE"
	GeneralNode        Kind = "GENERALNODE"
	InterfaceNodeList  Kind = "INTERFACE_NODE_LIST"
	NodeList           Kind = "NODE_LIST"
	ControlNodeList    Kind = "CONTROL_NODE_LIST"
	InputReferenceNode Kind = "INPUTREFERENCENODE"

	// values
	Value                 Kind = "VALUE"
	Expression            Kind = "EXPRESSION"
	ValueKeyword          Kind = "VALUE_KEYWORD"
	Voltage               Kind = "VOLTAGE"
	Current               Kind = "CURRENT"
	GainValue             Kind = "GAIN_VALUE"
	TransconductanceValue Kind = "TRANSCONDUCTANCE_VALUE"
	CouplingValue         Kind = "COUPLING_VALUE"
	AreaValue             Kind = "AREA_VALUE"
	OnOffValue            Kind = "ONOFF_VALUE"
	TempValue             Kind = "TEMP_VALUE"

	// sources
	DCValue       Kind = "DC_VALUE"
	DCValueValue  Kind = "DC_VALUE_VALUE"
	ACValue       Kind = "AC_VALUE"
	ACMagValue    Kind = "AC_MAG_VALUE"
	ACPhaseValue  Kind = "AC_PHASE_VALUE"
	TransFunc     Kind = "TRANS_FUNC_TYPE"
	TransRefName  Kind = "TRANS_REF_NAME"
	Transient     Kind = "TRANSIENT"
	Table         Kind = "TABLE"
	TableParam    Kind = "TABLE_PARAM_VALUE"
	Poly          Kind = "POLY"
	PolyValue     Kind = "POLY_VALUE"
	PolyParam     Kind = "POLY_PARAM_VALUE"
	ValueExpr     Kind = "VALUE_EXPRESSION"
	TableExpr     Kind = "TABLE_EXPRESSION"
	PolyExpr      Kind = "POLY_EXPRESSION"
	ControlExpr   Kind = "CONTROL_EXPRESSION"
	ControlParam  Kind = "CONTROL_PARAM_VALUE"
	ControlType   Kind = "CONTROL_TYPE"
	VoltageExpr   Kind = "VOLTAGE_EXPRESSION"
	CurrentExpr   Kind = "CURRENT_EXPRESSION"
	Schedule      Kind = "SCHEDULE"
	ScheduleParam Kind = "SCHEDULE_PARAM_VALUE"

	// controlling devices
	ControlDevice      Kind = "CONTROL_DEVICE"
	ControlDeviceName  Kind = "CONTROL_DEVICE_NAME"
	ControlDeviceValue Kind = "CONTROLDEVICE_VALUE"
	ControlDeviceList  Kind = "CONTROL_DEVICE_LIST"

	// subcircuits
	SubcktName            Kind = "SUBCIRCUITNAME_VALUE"
	SubcktDirectiveParam  Kind = "SUBCKT_DIRECTIVE_PARAM_VALUE"
	SubcktDeviceParam     Kind = "SUBCKT_DEVICE_PARAM_VALUE"
	SubcircuitParamsList  Kind = "SUBCIRCUIT_PARAMS_LIST"
	SubcircuitDeviceNodes Kind = "SUBCKT_DEVICE_NODE_LIST"

	// directives
	Filename          Kind = "FILENAME"
	LibEntry          Kind = "LIB_ENTRY"
	AnalysisType      Kind = "ANALYSIS_TYPE"
	OutputVariable    Kind = "OUTPUT_VARIABLE"
	OutputVariables   Kind = "OUTPUTVARIABLE_LIST"
	OptionPkgType     Kind = "OPTION_PKG_TYPE_VALUE"
	PrintStepValue    Kind = "PRINT_STEP_VALUE"
	FinalTimeValue    Kind = "FINAL_TIME_VALUE"
	StartTimeValue    Kind = "START_TIME_VALUE"
	StepCeilingValue  Kind = "STEP_CEILING_VALUE"
	UICValue          Kind = "UIC_VALUE"
	SweepTypeValue    Kind = "SWEEP_TYPE_VALUE"
	PointsValue       Kind = "POINTS_VALUE"
	StartFreqValue    Kind = "START_FREQ_VALUE"
	EndFreqValue      Kind = "END_FREQ_VALUE"
	Sweep             Kind = "SWEEP"
	SweepParam        Kind = "SWEEP_PARAM_VALUE"
	ValueList         Kind = "VALUE_LIST"
	ListParam         Kind = "LIST_PARAM_VALUE"
	FuncNameValue     Kind = "FUNC_NAME_VALUE"
	FuncArgValue      Kind = "FUNC_ARG_VALUE"
	FuncArgList       Kind = "FUNC_ARG_LIST"
	FuncExpression    Kind = "FUNC_EXPRESSION"
	ParamsList        Kind = "PARAMS_LIST"
	PreprocessKeyword Kind = "PREPROCESS_KEYWORD_VALUE"
	GeneralValue      Kind = "GENERAL_VALUE"
	InitialConditions Kind = "INITIAL_CONDITIONS_LIST"
	DataTableName     Kind = "DATA_TABLE_NAME"
	DataParamName     Kind = "DATA_PARAM_NAME"
	DataParamValue    Kind = "DATA_PARAM_VALUE"

	// measurements
	MeasureType       Kind = "MEASURE_TYPE"
	MeasureQualifier  Kind = "MEASURE_QUALIFIER"
	MeasureParamName  Kind = "MEASURE_PARAM_NAME"
	MeasureParamValue Kind = "MEASURE_PARAM_VALUE"
	ResultNameValue   Kind = "RESULT_NAME_VALUE"
	MeasurementType   Kind = "MEASUREMENT_TYPE_VALUE"

	// synthesized by resolution passes
	LazyObject Kind = "LAZY_OBJECT"
	Model      Kind = "MODEL"
	Params     Kind = "PARAMS"
)

// IsNode reports whether the kind names a single circuit terminal.
func (k Kind) IsNode() bool {
	switch k {
	case PosNode, NegNode, PosControlNode, NegControlNode, DrainNode, GateNode,
		SourceNode, SubstrateNode, CollectorNode, BaseNode, EmitterNode,
		ThermalNode, TemperatureNode, APortPosNode, APortNegNode, BPortPosNode,
		BPortNegNode, GeneralNode, InputReferenceNode:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	if k == Invalid {
		return "INVALID"
	}
	return string(k)
}
