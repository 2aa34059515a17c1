package lexer

import (
	"strings"

	"netxlate/internal/token"
)

var analysisNames = map[string]struct{}{
	"TRAN": {}, "AC": {}, "DC": {}, "NOISE": {}, "HB": {}, "OP": {}, "MPDE": {}, "SENS": {}, "ES": {}, "PCE": {},
}

func (e *emitter) directive(head string, words []word) {
	e.emit(token.DirectiveName, head)
	items := pairUp(words)

	switch head {
	case ".MODEL":
		e.model(items)
	case ".SUBCKT", ".MACRO":
		e.subcktDef(items)
	case ".ENDS", ".EOM", ".ENDL":
		for _, it := range items {
			if !it.pair {
				e.emit(token.SubcktName, it.value)
				break
			}
		}
	case ".PARAM", ".GLOBAL_PARAM", ".CSPARAM":
		e.paramDef(items)
	case ".FUNC":
		e.funcDef(items)
	case ".TRAN", ".TR":
		e.tran(items)
	case ".AC":
		e.ac(items)
	case ".DC", ".STEP":
		for _, it := range items {
			if it.pair {
				e.emit(token.SweepParam, it.name+"="+it.value)
				continue
			}
			e.emit(token.SweepParam, it.value)
		}
	case ".PRINT", ".PROBE", ".PLOT":
		e.print(items)
	case ".OPTIONS", ".OPTION", ".OPT":
		e.options(items)
	case ".TEMP", ".TEMPERATURE":
		for _, it := range items {
			e.emit(token.ValueList, it.value)
		}
	case ".INC", ".INCLUDE", ".INCL":
		if len(items) == 0 {
			e.complain(token.SevError, "missing file name")
			return
		}
		e.emit(token.Filename, items[0].value)
	case ".LIB":
		e.lib(items)
	case ".GLOBAL":
		for _, it := range items {
			e.emit(token.GeneralNode, it.value)
		}
	case ".IC", ".NODESET", ".INITCOND", ".DCVOLT":
		e.initialConditions(items)
	case ".MEAS", ".MEASURE":
		e.measure(items)
	case ".DATA":
		e.data(items)
	case ".PREPROCESS":
		if len(items) > 0 {
			e.emit(token.PreprocessKeyword, items[0].value)
		}
		for _, it := range items[min(1, len(items)):] {
			e.emit(token.GeneralValue, it.value)
		}
	case ".END", ".OP", ".ENDDATA", ".PROTECT", ".UNPROTECT", ".PROT", ".UNPROT":
		e.params(items)
	default:
		for _, w := range words {
			e.emit(token.RestOfLine, w.text)
		}
	}
}

// model consumes ".MODEL name type [(] params [)]".
func (e *emitter) model(items []item) {
	if len(items) < 2 || items[0].pair || items[1].pair {
		e.complain(token.SevError, "malformed .MODEL")
		e.params(items)
		return
	}
	e.emit(token.ModelName, items[0].value)
	typ := items[1].value
	rest := items[2:]
	// "nmos(level=1 ...)" glued to the type
	if name, args, ok := callParts(typ); ok {
		typ = name
		rest = append(pairUp(splitWords(args)), rest...)
	}
	e.emit(token.ModelType, typ)
	var flat []item
	for _, it := range rest {
		if !it.pair {
			if inner, ok := unwrapParens(it.value); ok {
				flat = append(flat, pairUp(splitWords(inner))...)
				continue
			}
			if it.value == "(" || it.value == ")" {
				continue
			}
		}
		flat = append(flat, it)
	}
	e.params(flat)
}

func (e *emitter) subcktDef(items []item) {
	if len(items) == 0 || items[0].pair {
		e.complain(token.SevError, "subcircuit name missing")
		e.params(items)
		return
	}
	e.emit(token.SubcktName, items[0].value)
	pos, rest := splitPositional(items[1:])
	for _, p := range pos {
		e.emit(token.GeneralNode, p)
	}
	e.params(rest)
}

// paramDef handles .PARAM lines, which in some dialects also define
// functions: ".PARAM f(x)='x*2' a=1".
func (e *emitter) paramDef(items []item) {
	for _, it := range items {
		if !it.pair {
			e.emit(token.StandaloneParam, it.value)
			continue
		}
		if name, args, ok := callParts(it.name); ok {
			e.emit(token.FuncNameValue, name)
			for _, a := range splitWords(args) {
				if !a.eq {
					e.emit(token.FuncArgValue, a.text)
				}
			}
			e.emit(token.FuncExpression, it.value)
			continue
		}
		e.emit(token.ParamName, it.name)
		e.emit(token.ParamValue, it.value)
	}
}

func (e *emitter) funcDef(items []item) {
	if len(items) == 0 {
		e.complain(token.SevError, "malformed .FUNC")
		return
	}
	head := items[0]
	nameText := head.value
	body := ""
	if head.pair {
		nameText, body = head.name, head.value
	}
	name, args, ok := callParts(nameText)
	rest := items[1:]
	if !ok {
		// ".FUNC f (x) {body}"
		name = nameText
		if len(rest) > 0 && !rest[0].pair && strings.HasPrefix(rest[0].value, "(") {
			args, _ = unwrapParens(rest[0].value)
			rest = rest[1:]
		}
	}
	e.emit(token.FuncNameValue, name)
	for _, a := range splitWords(args) {
		if !a.eq {
			e.emit(token.FuncArgValue, a.text)
		}
	}
	if body == "" && len(rest) > 0 {
		body = rest[0].value
	}
	if body == "" {
		e.complain(token.SevError, "function body missing")
	}
	e.emit(token.FuncExpression, body)
}

func (e *emitter) tran(items []item) {
	slots := []token.Kind{token.PrintStepValue, token.FinalTimeValue, token.StartTimeValue, token.StepCeilingValue}
	n := 0
	var rest []item
	for _, it := range items {
		switch {
		case !it.pair && strings.EqualFold(it.value, "UIC"):
			e.emit(token.UICValue, "UIC")
		case !it.pair && n < len(slots) && isValueWord(it.value):
			e.emit(slots[n], it.value)
			n++
		case it.pair && strings.EqualFold(it.name, "START"):
			e.emit(token.StartTimeValue, it.value)
		default:
			rest = append(rest, it)
		}
	}
	if n < 2 {
		e.complain(token.SevWarn, ".TRAN needs a step and a final time")
	}
	e.params(rest)
}

func (e *emitter) ac(items []item) {
	slots := []token.Kind{token.SweepTypeValue, token.PointsValue, token.StartFreqValue, token.EndFreqValue}
	pos, rest := splitPositional(items)
	for i, p := range pos {
		if i < len(slots) {
			e.emit(slots[i], p)
			continue
		}
		e.emit(token.StandaloneParam, p)
	}
	e.params(rest)
}

func (e *emitter) print(items []item) {
	if len(items) > 0 && !items[0].pair {
		if _, ok := analysisNames[strings.ToUpper(items[0].value)]; ok {
			e.emit(token.AnalysisType, strings.ToUpper(items[0].value))
			items = items[1:]
		}
	}
	for _, it := range items {
		if it.pair {
			e.emit(token.ParamName, it.name)
			e.emit(token.ParamValue, it.value)
			continue
		}
		e.emit(token.OutputVariable, it.value)
	}
}

func (e *emitter) options(items []item) {
	if e.opts.PackageOptions && len(items) > 0 && !items[0].pair {
		e.emit(token.OptionPkgType, strings.ToUpper(items[0].value))
		items = items[1:]
	}
	e.params(items)
}

// lib tells a library reference (".LIB file section") from a section
// header (".LIB section").
func (e *emitter) lib(items []item) {
	var pos []string
	for _, it := range items {
		if !it.pair {
			pos = append(pos, it.value)
		}
	}
	switch len(pos) {
	case 0:
		e.complain(token.SevError, "malformed .LIB")
	case 1:
		p := pos[0]
		if strings.ContainsAny(p, `"'/\`) || strings.Contains(p, ".") {
			e.emit(token.Filename, p)
		} else {
			e.emit(token.LibEntry, p)
		}
	default:
		e.emit(token.Filename, pos[0])
		e.emit(token.LibEntry, pos[1])
	}
}

// initialConditions consumes V(node)=value and I(dev)=value entries.
func (e *emitter) initialConditions(items []item) {
	for _, it := range items {
		if !it.pair {
			e.emit(token.StandaloneParam, it.value)
			continue
		}
		fn, arg, ok := callParts(it.name)
		if !ok {
			e.emit(token.ParamName, it.name)
			e.emit(token.ParamValue, it.value)
			continue
		}
		if strings.EqualFold(fn, "I") {
			e.emit(token.Current, "I")
		} else {
			e.emit(token.Voltage, "V")
		}
		e.emit(token.GeneralNode, arg)
		e.emit(token.GeneralValue, it.value)
	}
}

func (e *emitter) measure(items []item) {
	if len(items) > 0 && !items[0].pair {
		if _, ok := analysisNames[strings.ToUpper(items[0].value)]; ok {
			e.emit(token.AnalysisType, strings.ToUpper(items[0].value))
			items = items[1:]
		}
	}
	if len(items) > 0 && !items[0].pair {
		e.emit(token.ResultNameValue, items[0].value)
		items = items[1:]
	}
	if len(items) > 0 && !items[0].pair {
		e.emit(token.MeasureType, strings.ToUpper(items[0].value))
		items = items[1:]
	}
	for _, it := range items {
		if it.pair {
			e.emit(token.MeasureParamName, it.name)
			e.emit(token.MeasureParamValue, it.value)
			continue
		}
		e.emit(token.MeasureQualifier, it.value)
	}
}

// data consumes ".DATA name p1 p2 ... v11 v12 ...".
func (e *emitter) data(items []item) {
	if len(items) == 0 {
		e.complain(token.SevError, "malformed .DATA")
		return
	}
	e.emit(token.DataTableName, items[0].value)
	for _, it := range items[1:] {
		if isValueWord(it.value) {
			e.emit(token.DataParamValue, it.value)
			continue
		}
		e.emit(token.DataParamName, it.value)
	}
}
