package dialect

import (
	"strings"

	"netxlate/internal/source"
)

type keywordSignal struct {
	Dialect Kind
	Score   int
	Reason  string
}

// directiveSignals are keyed by the upper-cased first word of a line.
var directiveSignals = map[string][]keywordSignal{
	// hspice
	".ALTER":    {{Dialect: HSpice, Score: 6, Reason: "hspice directive .ALTER"}},
	".MACRO":    {{Dialect: HSpice, Score: 5, Reason: "hspice directive .MACRO"}},
	".EOM":      {{Dialect: HSpice, Score: 5, Reason: "hspice directive .EOM"}},
	".HDL":      {{Dialect: HSpice, Score: 5, Reason: "hspice directive .HDL"}},
	".PROTECT":  {{Dialect: HSpice, Score: 4, Reason: "hspice directive .PROTECT"}},
	".MEASURE":  {{Dialect: HSpice, Score: 2, Reason: "hspice spelling .MEASURE"}},
	".PROBE":    {{Dialect: HSpice, Score: 1, Reason: "hspice directive .PROBE"}, {Dialect: PSpice, Score: 1, Reason: "pspice directive .PROBE"}},
	".TEMP":     {{Dialect: HSpice, Score: 2, Reason: "directive .TEMP"}, {Dialect: PSpice, Score: 2, Reason: "directive .TEMP"}},
	".DATA":     {{Dialect: HSpice, Score: 2, Reason: "hspice directive .DATA"}},
	".ENDDATA":  {{Dialect: HSpice, Score: 3, Reason: "hspice directive .ENDDATA"}},
	".LIB":      {{Dialect: HSpice, Score: 1, Reason: ".LIB sections"}},
	".ENDL":     {{Dialect: HSpice, Score: 3, Reason: "hspice directive .ENDL"}},
	".GLOBAL":   {{Dialect: HSpice, Score: 1, Reason: "directive .GLOBAL"}},
	".CONNECT":  {{Dialect: HSpice, Score: 4, Reason: "hspice directive .CONNECT"}},
	".BIASCHK":  {{Dialect: HSpice, Score: 5, Reason: "hspice directive .BIASCHK"}},
	".OPTION":   {{Dialect: HSpice, Score: 2, Reason: "hspice spelling .OPTION"}},
	".VEC":      {{Dialect: HSpice, Score: 4, Reason: "hspice directive .VEC"}},
	".INCLUDE":  {{Dialect: HSpice, Score: 1, Reason: "spelling .INCLUDE"}, {Dialect: PSpice, Score: 1, Reason: "spelling .INCLUDE"}},
	".TR":       {{Dialect: HSpice, Score: 1, Reason: "directive .TR"}},
	".INITCOND": {{Dialect: HSpice, Score: 3, Reason: "hspice directive .INITCOND"}},

	// pspice
	".STIMULUS":     {{Dialect: PSpice, Score: 6, Reason: "pspice directive .STIMULUS"}},
	".STIMLIB":      {{Dialect: PSpice, Score: 6, Reason: "pspice directive .STIMLIB"}},
	".DISTRIBUTION": {{Dialect: PSpice, Score: 5, Reason: "pspice directive .DISTRIBUTION"}},
	".WCASE":        {{Dialect: PSpice, Score: 5, Reason: "pspice directive .WCASE"}},
	".MC":           {{Dialect: PSpice, Score: 4, Reason: "pspice directive .MC"}},
	".LOADBIAS":     {{Dialect: PSpice, Score: 5, Reason: "pspice directive .LOADBIAS"}},
	".SAVEBIAS":     {{Dialect: PSpice, Score: 5, Reason: "pspice directive .SAVEBIAS"}},
	".ALIASES":      {{Dialect: PSpice, Score: 5, Reason: "pspice directive .ALIASES"}},
	".ENDALIASES":   {{Dialect: PSpice, Score: 5, Reason: "pspice directive .ENDALIASES"}},
	".EXTERNAL":     {{Dialect: PSpice, Score: 4, Reason: "pspice directive .EXTERNAL"}},
	".PLOT":         {{Dialect: PSpice, Score: 1, Reason: "directive .PLOT"}},

	// xyce
	".PREPROCESS":       {{Dialect: Xyce, Score: 8, Reason: "xyce directive .PREPROCESS"}},
	".GLOBAL_PARAM":     {{Dialect: Xyce, Score: 6, Reason: "xyce directive .GLOBAL_PARAM"}},
	".STEP":             {{Dialect: Xyce, Score: 1, Reason: "directive .STEP"}, {Dialect: PSpice, Score: 1, Reason: "directive .STEP"}},
	".SAMPLING":         {{Dialect: Xyce, Score: 6, Reason: "xyce directive .SAMPLING"}},
	".EMBEDDEDSAMPLING": {{Dialect: Xyce, Score: 8, Reason: "xyce directive .EMBEDDEDSAMPLING"}},
	".MPDE":             {{Dialect: Xyce, Score: 6, Reason: "xyce directive .MPDE"}},
	".HB":               {{Dialect: Xyce, Score: 4, Reason: "xyce directive .HB"}},
	".RESULT":           {{Dialect: Xyce, Score: 5, Reason: "xyce directive .RESULT"}},
	".OBJECTIVE":        {{Dialect: Xyce, Score: 5, Reason: "xyce directive .OBJECTIVE"}},
}

// optionPackages name the .OPTIONS packages only xyce has.
var optionPackages = []string{"NONLIN", "NONLIN-TRAN", "TIMEINT", "DEVICE", "PARSER", "OUTPUT", "LINSOL"}

// RecordDirective collects evidence for the first word of a line.
func RecordDirective(e *Evidence, word string, span source.Span) {
	if e == nil || word == "" {
		return
	}
	for _, sig := range directiveSignals[strings.ToUpper(word)] {
		e.Add(Hint{
			Dialect: sig.Dialect,
			Score:   sig.Score,
			Reason:  sig.Reason,
			Span:    span,
		})
	}
}
