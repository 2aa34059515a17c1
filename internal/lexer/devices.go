package lexer

import (
	"strings"

	"netxlate/internal/token"
)

// modelShape describes a device whose positional words are terminals
// followed by a model name.
type modelShape struct {
	nodes    []token.Kind
	optional []token.Kind // terminals that may precede the model name
	after    token.Kind   // kind of the first positional word after the model
}

var modelShapes = map[string]modelShape{
	"D": {nodes: []token.Kind{token.PosNode, token.NegNode}, after: token.AreaValue},
	"Q": {
		nodes:    []token.Kind{token.CollectorNode, token.BaseNode, token.EmitterNode},
		optional: []token.Kind{token.SubstrateNode, token.ThermalNode},
		after:    token.AreaValue,
	},
	"M": {nodes: []token.Kind{token.DrainNode, token.GateNode, token.SourceNode, token.SubstrateNode}},
	"J": {nodes: []token.Kind{token.DrainNode, token.GateNode, token.SourceNode}, after: token.AreaValue},
	"Z": {nodes: []token.Kind{token.DrainNode, token.GateNode, token.SourceNode}, after: token.AreaValue},
	"S": {nodes: []token.Kind{token.PosNode, token.NegNode, token.PosControlNode, token.NegControlNode}, after: token.OnOffValue},
	"O": {nodes: []token.Kind{token.APortPosNode, token.APortNegNode, token.BPortPosNode, token.BPortNegNode}},
}

var transientFuncs = map[string]struct{}{
	"PULSE": {}, "SIN": {}, "EXP": {}, "PWL": {}, "SFFM": {}, "PAT": {},
}

func (e *emitter) device(head string, words []word) {
	letter := strings.ToUpper(head[:1])
	e.emit(token.DeviceType, letter)
	e.emit(token.DeviceName, head[1:])
	items := pairUp(words)

	switch letter {
	case "R", "C", "L":
		e.passive(items)
	case "V", "I":
		e.independentSource(items)
	case "E", "G":
		e.voltageControlled(letter, items)
	case "F", "H":
		e.currentControlled(letter, items)
	case "B":
		e.behavioral(items)
	case "K":
		e.coupling(items)
	case "W":
		e.currentSwitch(items)
	case "T":
		e.transmissionLine(items)
	case "X":
		e.subcircuitInstance(items)
	default:
		if shape, ok := modelShapes[letter]; ok {
			e.modelDevice(shape, items)
			return
		}
		pos, rest := splitPositional(items)
		for _, p := range pos {
			e.emit(token.GeneralNode, p)
		}
		e.params(rest)
	}
}

// nodes emits the mandatory terminals and returns the positional words left.
func (e *emitter) nodes(kinds []token.Kind, pos []string) []string {
	if len(pos) < len(kinds) {
		e.complain(token.SevError, "too few nodes")
		for i, p := range pos {
			e.emit(kinds[i], p)
		}
		return nil
	}
	for i, k := range kinds {
		e.emit(k, pos[i])
	}
	return pos[len(kinds):]
}

func (e *emitter) standalone(words []string) {
	for _, w := range words {
		e.emit(token.StandaloneParam, w)
	}
}

func (e *emitter) passive(items []item) {
	pos, rest := splitPositional(items)
	left := e.nodes([]token.Kind{token.PosNode, token.NegNode}, pos)
	switch {
	case len(left) == 0:
	case len(left) == 1 && isValueWord(left[0]):
		e.emit(token.Value, left[0])
	case len(left) == 1:
		// a bare name: model or parameter reference, decided once the
		// model table is complete
		e.emitAmbiguous(left[0], token.ModelName, token.Value)
	case isValueWord(left[0]):
		e.emit(token.Value, left[0])
		e.standalone(left[1:])
	default:
		e.emit(token.ModelName, left[0])
		e.emit(token.Value, left[1])
		e.standalone(left[2:])
	}
	e.params(rest)
}

func (e *emitter) modelDevice(shape modelShape, items []item) {
	pos, rest := splitPositional(items)
	left := e.nodes(shape.nodes, pos)
	if len(left) == 0 {
		if len(pos) >= len(shape.nodes) {
			e.complain(token.SevError, "model name missing")
		}
		e.params(rest)
		return
	}
	// the model is the last name among the optional terminal slots
	model := -1
	for i := 0; i < len(left) && i <= len(shape.optional); i++ {
		if !isValueWord(left[i]) {
			model = i
		}
	}
	if model < 0 {
		e.complain(token.SevError, "model name missing")
		for _, w := range left {
			e.emit(token.GeneralNode, w)
		}
		e.params(rest)
		return
	}
	for i := 0; i < model; i++ {
		e.emit(shape.optional[i], left[i])
	}
	e.emit(token.ModelName, left[model])
	left = left[model+1:]
	if len(left) > 0 && shape.after != token.Invalid {
		if shape.after == token.OnOffValue && !isOnOff(left[0]) {
			e.standalone(left)
		} else {
			e.emit(shape.after, left[0])
			e.standalone(left[1:])
		}
	} else {
		e.standalone(left)
	}
	e.params(rest)
}

func isOnOff(w string) bool {
	return strings.EqualFold(w, "ON") || strings.EqualFold(w, "OFF")
}

func (e *emitter) independentSource(items []item) {
	var pos []string
	for len(items) > 0 && !items[0].pair && len(pos) < 2 {
		pos = append(pos, items[0].value)
		items = items[1:]
	}
	e.nodes([]token.Kind{token.PosNode, token.NegNode}, pos)

	dcSeen := false
	for i := 0; i < len(items); i++ {
		it := items[i]
		if it.pair {
			switch strings.ToUpper(it.name) {
			case "DC":
				e.emit(token.DCValue, "DC")
				e.emit(token.DCValueValue, it.value)
				dcSeen = true
			case "AC":
				e.emit(token.ACValue, "AC")
				e.emit(token.ACMagValue, it.value)
			default:
				e.emit(token.ParamName, it.name)
				e.emit(token.ParamValue, it.value)
			}
			continue
		}
		upper := strings.ToUpper(it.value)
		switch {
		case upper == "DC":
			e.emit(token.DCValue, "DC")
			if i+1 < len(items) && !items[i+1].pair {
				i++
				e.emit(token.DCValueValue, items[i].value)
			}
			dcSeen = true
		case upper == "AC":
			e.emit(token.ACValue, "AC")
			if i+1 < len(items) && !items[i+1].pair && isValueWord(items[i+1].value) {
				i++
				e.emit(token.ACMagValue, items[i].value)
				if i+1 < len(items) && !items[i+1].pair && isValueWord(items[i+1].value) {
					i++
					e.emit(token.ACPhaseValue, items[i].value)
				}
			}
		case e.transient(items, &i):
		case !dcSeen && isValueWord(it.value):
			e.emit(token.DCValueValue, it.value)
			dcSeen = true
		default:
			e.emit(token.StandaloneParam, it.value)
		}
	}
}

// transient consumes a waveform such as PULSE(0 1 0 1n 1n 5n 10n) starting
// at items[*i]. It reports whether a waveform was found.
func (e *emitter) transient(items []item, i *int) bool {
	w := items[*i].value
	name, args, ok := callParts(w)
	if !ok {
		name = w
	}
	name = strings.ToUpper(name)
	if _, known := transientFuncs[name]; !known {
		return false
	}
	e.emit(token.TransFunc, name)
	switch {
	case ok:
	case *i+1 < len(items) && !items[*i+1].pair && strings.HasPrefix(items[*i+1].value, "("):
		*i++
		args, _ = unwrapParens(items[*i].value)
	default:
		// unparenthesized argument list
		for *i+1 < len(items) && !items[*i+1].pair && isValueWord(items[*i+1].value) {
			*i++
			e.emit(token.TransRefName, items[*i].value)
		}
		return true
	}
	for _, a := range pairUp(splitWords(args)) {
		if a.pair {
			e.emit(token.TransRefName, a.name+"="+a.value)
			continue
		}
		e.emit(token.TransRefName, a.value)
	}
	return true
}

func (e *emitter) voltageControlled(letter string, items []item) {
	var pos []string
	for len(items) > 0 && !items[0].pair && len(pos) < 2 {
		pos = append(pos, items[0].value)
		items = items[1:]
	}
	e.nodes([]token.Kind{token.PosNode, token.NegNode}, pos)
	if len(items) == 0 {
		e.complain(token.SevError, "missing controlling source")
		return
	}

	head := items[0]
	upper := strings.ToUpper(head.value)
	switch {
	case head.pair && strings.EqualFold(head.name, "VALUE"):
		e.emit(token.ValueKeyword, "VALUE")
		e.emit(token.Expression, head.value)
		e.params(items[1:])
	case !head.pair && upper == "VALUE" && len(items) > 1:
		e.emit(token.ValueKeyword, "VALUE")
		e.emit(token.Expression, items[1].value)
		e.params(items[2:])
	case !head.pair && upper == "TABLE":
		e.table(items[1:])
	case !head.pair && strings.HasPrefix(upper, "POLY"):
		e.poly(items, 0)
	default:
		pos, rest := splitPositional(items)
		left := e.nodes([]token.Kind{token.PosControlNode, token.NegControlNode}, pos)
		gain := token.GainValue
		if letter == "G" {
			gain = token.TransconductanceValue
		}
		if len(left) > 0 {
			e.emit(gain, left[0])
			e.standalone(left[1:])
		}
		e.params(rest)
	}
}

// table consumes "{expr} = (x,y) (x,y) ..." after a TABLE keyword.
func (e *emitter) table(items []item) {
	e.emit(token.Table, "TABLE")
	if len(items) == 0 {
		e.complain(token.SevError, "TABLE without expression")
		return
	}
	first := items[0]
	if first.pair {
		e.emit(token.Expression, first.name)
		e.tablePoint(first.value)
	} else {
		e.emit(token.Expression, first.value)
	}
	for _, it := range items[1:] {
		if it.pair {
			e.emit(token.ParamName, it.name)
			e.emit(token.ParamValue, it.value)
			continue
		}
		e.tablePoint(it.value)
	}
}

func (e *emitter) tablePoint(w string) {
	inner, _ := unwrapParens(w)
	for _, p := range splitWords(inner) {
		if !p.eq {
			e.emit(token.TableParam, p.text)
		}
	}
}

// poly consumes POLY(n) followed by n*width controls and the coefficients.
// width is 0 for voltage controls (two nodes each) and 1 for device names.
func (e *emitter) poly(items []item, width int) {
	head := items[0].value
	items = items[1:]
	n := ""
	if _, args, ok := callParts(head); ok {
		n = strings.TrimSpace(args)
	} else if len(items) > 0 && strings.HasPrefix(items[0].value, "(") {
		n, _ = unwrapParens(items[0].value)
		items = items[1:]
	}
	e.emit(token.Poly, "POLY")
	e.emit(token.PolyValue, n)
	pos, rest := splitPositional(items)
	if width == 1 {
		count, _ := token.Count(n)
		for i := 0; i < count && i < len(pos); i++ {
			e.emit(token.ControlDeviceName, pos[i])
		}
		if count < len(pos) {
			pos = pos[count:]
		} else {
			pos = nil
		}
	}
	for _, p := range pos {
		e.emit(token.PolyParam, p)
	}
	e.params(rest)
}

func (e *emitter) currentControlled(letter string, items []item) {
	var pos []string
	for len(items) > 0 && !items[0].pair && len(pos) < 2 {
		pos = append(pos, items[0].value)
		items = items[1:]
	}
	e.nodes([]token.Kind{token.PosNode, token.NegNode}, pos)
	if len(items) == 0 {
		e.complain(token.SevError, "missing controlling device")
		return
	}
	if !items[0].pair && strings.HasPrefix(strings.ToUpper(items[0].value), "POLY") {
		e.poly(items, 1)
		return
	}
	left, rest := splitPositional(items)
	if len(left) > 0 {
		e.emit(token.ControlDeviceValue, left[0])
	}
	if len(left) > 1 {
		e.emit(token.GainValue, left[1])
		e.standalone(left[2:])
	}
	e.params(rest)
}

func (e *emitter) behavioral(items []item) {
	pos, rest := splitPositional(items)
	e.nodes([]token.Kind{token.PosNode, token.NegNode}, pos)
	for _, it := range rest {
		if it.pair {
			switch strings.ToUpper(it.name) {
			case "V":
				e.emit(token.Voltage, "V")
				e.emit(token.Expression, it.value)
				continue
			case "I":
				e.emit(token.Current, "I")
				e.emit(token.Expression, it.value)
				continue
			}
		}
		e.params([]item{it})
	}
}

func (e *emitter) coupling(items []item) {
	pos, rest := splitPositional(items)
	if len(pos) < 2 {
		e.complain(token.SevError, "coupling needs inductors and a coefficient")
	}
	for i, p := range pos {
		if i == len(pos)-1 && len(pos) > 1 {
			e.emit(token.CouplingValue, p)
			break
		}
		e.emit(token.ControlDeviceName, p)
	}
	e.params(rest)
}

func (e *emitter) currentSwitch(items []item) {
	pos, rest := splitPositional(items)
	left := e.nodes([]token.Kind{token.PosNode, token.NegNode}, pos)
	if len(left) > 0 {
		e.emit(token.ControlDeviceValue, left[0])
	}
	if len(left) > 1 {
		e.emit(token.ModelName, left[1])
	}
	extra := left[min(2, len(left)):]
	if len(extra) > 0 && isOnOff(extra[0]) {
		e.emit(token.OnOffValue, extra[0])
		extra = extra[1:]
	}
	e.standalone(extra)
	e.params(rest)
}

func (e *emitter) transmissionLine(items []item) {
	pos, rest := splitPositional(items)
	left := e.nodes([]token.Kind{token.APortPosNode, token.APortNegNode, token.BPortPosNode, token.BPortNegNode}, pos)
	e.standalone(left)
	e.params(rest)
}

func (e *emitter) subcircuitInstance(items []item) {
	pos, rest := splitPositional(items)
	if len(pos) == 0 {
		e.complain(token.SevError, "subcircuit name missing")
		e.params(rest)
		return
	}
	for _, p := range pos[:len(pos)-1] {
		e.emit(token.GeneralNode, p)
	}
	e.emit(token.SubcktName, pos[len(pos)-1])
	e.params(rest)
}
