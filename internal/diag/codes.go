package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// чтение и нормализация строк
	RdInfo               Code = 1000
	RdTokenizer          Code = 1001
	RdMalformedTernary   Code = 1002
	RdUnexpectedToken    Code = 1003
	RdOptionRetained     Code = 1004
	RdUnsupportedLine    Code = 1005
	RdModelBinning       Code = 1006
	RdDialectSwitch      Code = 1007
	RdUnbalancedBrackets Code = 1008

	// область видимости
	ScpInfo                  Code = 2000
	ScpNameConflict          Code = 2001
	ScpCaseConflict          Code = 2002
	ScpUnresolvedDevice      Code = 2003
	ScpControlDeviceNotFound Code = 2004
	ScpUnresolvedReference   Code = 2005

	// отображение диалектов
	MapInfo                  Code = 3000
	MapDeviceTypeNotFound    Code = 3001
	MapDirectiveNotFound     Code = 3002
	MapParamRemoved          Code = 3003
	MapTooManyNodes          Code = 3004
	MapModelVersionNotFound  Code = 3005
	MapInvalidControlType    Code = 3006
	MapTooManyControlValues  Code = 3007
	MapTooManyTransientArgs  Code = 3008
	MapUnsupportedDirective  Code = 3009
	MapUnsupportedVariable   Code = 3010
	MapInvalidMeasure        Code = 3011
	MapPolyWithoutControl    Code = 3012
	MapConflictingVariable   Code = 3013
	MapUnsupportedOutputVars Code = 3014
	MapOddTableValues        Code = 3015

	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOMissingFile   Code = 4002
	IONonASCII      Code = 4003
	IOWriteError    Code = 4004
	IOCacheError    Code = 4005

	CtxInfo             Code = 5000
	CtxFunctionCall     Code = 5001
	CtxUnresolvedSubckt Code = 5002
	CtxRecursiveSubckt  Code = 5003
	CtxEvaluation       Code = 5004
	CtxConflictingValue Code = 5005

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		RdInfo:                   "Reader information",
		RdTokenizer:              "Tokenizer message",
		RdMalformedTernary:       "Malformed ternary expression",
		RdUnexpectedToken:        "Unexpected token",
		RdOptionRetained:         "Option retained as comment",
		RdUnsupportedLine:        "Line could not be parsed",
		RdModelBinning:           "Binned model detected",
		RdDialectSwitch:          "Input dialect switched",
		RdUnbalancedBrackets:     "Unbalanced brackets",
		ScpInfo:                  "Scope information",
		ScpNameConflict:          "Name already used in scope",
		ScpCaseConflict:          "Names collide case-insensitively",
		ScpUnresolvedDevice:      "Unknown device could not be resolved",
		ScpControlDeviceNotFound: "Control device not found",
		ScpUnresolvedReference:   "Unresolved reference",
		MapInfo:                  "Mapping information",
		MapDeviceTypeNotFound:    "Device type not found",
		MapDirectiveNotFound:     "Directive type not found",
		MapParamRemoved:          "Parameter removed",
		MapTooManyNodes:          "Too many nodes defined",
		MapModelVersionNotFound:  "Model version not found",
		MapInvalidControlType:    "Invalid control type",
		MapTooManyControlValues:  "Too many control values",
		MapTooManyTransientArgs:  "Too many transient parameters",
		MapUnsupportedDirective:  "Directive unsupported in output dialect",
		MapUnsupportedVariable:   "Special variable unsupported in output dialect",
		MapInvalidMeasure:        "Measure could not be translated",
		MapPolyWithoutControl:    "POLY without control type",
		MapConflictingVariable:   "Name conflicts with output dialect special variable",
		MapUnsupportedOutputVars: "Output variables unsupported in output dialect",
		MapOddTableValues:        "TABLE has an odd number of values",
		IOInfo:                   "I/O information",
		IOLoadFileError:          "I/O load file error",
		IOMissingFile:            "Referenced file not found",
		IONonASCII:               "Non-ASCII characters removed",
		IOWriteError:             "I/O write error",
		IOCacheError:             "Translation cache error",
		CtxInfo:                  "Instantiation context information",
		CtxFunctionCall:          "Function call needs per-instance evaluation",
		CtxUnresolvedSubckt:      "Instantiated subcircuit not found",
		CtxRecursiveSubckt:       "Subcircuit instantiates itself",
		CtxEvaluation:            "Function call could not be evaluated",
		CtxConflictingValue:      "Instance sees different values per context",
		ObsInfo:                  "Observability information",
		ObsTimings:               "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("RD%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SCP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("MAP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CTX%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
