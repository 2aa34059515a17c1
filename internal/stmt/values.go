package stmt

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Value is a typed prop. SpiceString renders it the way it appears in a
// netlist line.
type Value interface {
	SpiceString() string
}

// Text is a verbatim prop value.
type Text string

func (t Text) SpiceString() string { return string(t) }

// Words is a whitespace separated list (output variables, value lists).
type Words []string

func (w Words) SpiceString() string { return strings.Join(w, " ") }

// Param is one NAME=value pair of a subcircuit instance or params list.
type Param struct {
	Name  string
	Value string
}

// ParamList keeps NAME=value pairs in authored order.
type ParamList []Param

func (p ParamList) SpiceString() string {
	parts := make([]string, len(p))
	for i, kv := range p {
		parts[i] = kv.Name + "=" + kv.Value
	}
	return strings.Join(parts, " ")
}

// Get returns the value for name (exact match).
func (p ParamList) Get(name string) (string, bool) {
	for _, kv := range p {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return "", false
}

// With returns p with name set to value; existing entries keep their slot.
func (p ParamList) With(name, value string) ParamList {
	for i := range p {
		if p[i].Name == name {
			out := append(ParamList(nil), p...)
			out[i].Value = value
			return out
		}
	}
	return append(append(ParamList(nil), p...), Param{Name: name, Value: value})
}

// NodeList holds node references in order.
type NodeList []*ENode

func (n NodeList) SpiceString() string {
	parts := make([]string, len(n))
	for i, node := range n {
		parts[i] = node.Name()
	}
	return strings.Join(parts, " ")
}

// DeviceList holds resolved control devices.
type DeviceList []*Device

func (d DeviceList) SpiceString() string {
	parts := make([]string, len(d))
	for i, dev := range d {
		parts[i] = dev.FullName()
	}
	return strings.Join(parts, " ")
}

// AC is the small-signal stimulus of an independent source.
type AC struct {
	Mag   string
	Phase string
}

func (a AC) SpiceString() string {
	out := "AC"
	if a.Mag != "" {
		out += " " + a.Mag
		if a.Phase != "" {
			out += " " + a.Phase
		}
	}
	return out
}

// DC is the operating-point value of an independent source.
type DC struct {
	Value string
}

func (d DC) SpiceString() string {
	if d.Value == "" {
		return "DC"
	}
	return "DC " + d.Value
}

// transientFields names the positional arguments of each waveform.
var transientFields = map[string][]string{
	"PULSE": {"V1", "V2", "TD", "TR", "TF", "PW", "PER"},
	"SIN":   {"V0", "VA", "FREQ", "TD", "THETA", "PHASE"},
	"EXP":   {"V1", "V2", "TD1", "TAU1", "TD2", "TAU2"},
	"SFFM":  {"VOFF", "VAMPL", "FC", "MOD", "FM"},
	"PWL":   nil,
	"PAT":   {"VHI", "VLO", "TD", "TR", "TF", "TSAMPLE", "DATA", "R"},
}

// Transient is a time-domain waveform of an independent source.
type Transient struct {
	Func  string
	Args  []string
	Pairs [][2]string // PWL only
}

// NewTransient validates args against the waveform and builds it. The
// error reports an unknown waveform or too many arguments.
func NewTransient(fn string, args []string) (*Transient, error) {
	fn = strings.ToUpper(fn)
	fields, ok := transientFields[fn]
	if !ok {
		return nil, fmt.Errorf("%s is not a valid transient function", fn)
	}
	t := &Transient{Func: fn}
	if fn == "PWL" {
		for i := 0; i+1 < len(args); i += 2 {
			t.Pairs = append(t.Pairs, [2]string{args[i], args[i+1]})
		}
		return t, nil
	}
	if len(args) > len(fields) {
		return nil, fmt.Errorf("%s takes at most %d arguments, got %d", fn, len(fields), len(args))
	}
	t.Args = append([]string(nil), args...)
	return t, nil
}

// PWLFile returns the data file of a PWL FILE waveform and rewrites the
// waveform to reference it by base name.
func (t *Transient) PWLFile() string {
	for i, p := range t.Pairs {
		if strings.EqualFold(p[0], "FILE") {
			file := strings.Trim(p[1], `"'`)
			t.Pairs[i][1] = filepath.Base(file)
			return file
		}
	}
	return ""
}

func (t *Transient) SpiceString() string {
	if t.Func != "PWL" {
		var args []string
		for _, a := range t.Args {
			if a != "" {
				args = append(args, a)
			}
		}
		return t.Func + "(" + strings.Join(args, " ") + ")"
	}
	file := false
	for _, p := range t.Pairs {
		if strings.EqualFold(p[0], "FILE") {
			file = true
		}
	}
	parts := make([]string, 0, 2*len(t.Pairs))
	for _, p := range t.Pairs {
		v := p[1]
		if file {
			v = `"` + strings.Trim(v, `"'`) + `"`
		}
		parts = append(parts, p[0], v)
	}
	if file {
		return "PWL " + strings.Join(parts, " ")
	}
	return "PWL(" + strings.Join(parts, " ") + ")"
}

// SweepMode is the stepping law of one sweep.
type SweepMode string

const (
	SweepLin  SweepMode = "LIN"
	SweepDec  SweepMode = "DEC"
	SweepOct  SweepMode = "OCT"
	SweepList SweepMode = "LIST"
	SweepData SweepMode = "DATA"
)

// SweepSpec is one swept variable.
type SweepSpec struct {
	Mode   SweepMode
	Var    string
	Start  string
	Stop   string
	Step   string // step for LIN, points for DEC/OCT
	Values []string
}

func (s SweepSpec) SpiceString() string {
	switch s.Mode {
	case SweepList:
		return strings.TrimSpace(s.Var + " LIST " + strings.Join(s.Values, " "))
	case SweepData:
		return "DATA=" + s.Var
	default:
		return strings.Join([]string{string(s.Mode), s.Var, s.Start, s.Stop, s.Step}, " ")
	}
}

// Sweep is the variable list of .DC and .STEP.
type Sweep []SweepSpec

func (s Sweep) SpiceString() string {
	parts := make([]string, len(s))
	for i, sp := range s {
		parts[i] = sp.SpiceString()
	}
	return strings.Join(parts, " ")
}

// ParseSweep reads the flat word list of a sweep. All specs of one line
// share the mode of the first keyword found (LIN when none).
func ParseSweep(words []string) (Sweep, error) {
	mode := SweepLin
	for _, w := range words {
		u := strings.ToUpper(w)
		switch {
		case u == string(SweepDec), u == string(SweepOct), u == string(SweepList):
			mode = SweepMode(u)
		case strings.HasPrefix(u, string(SweepData)):
			mode = SweepData
		}
		if mode != SweepLin {
			break
		}
	}
	var out Sweep
	switch mode {
	case SweepList:
		var cur *SweepSpec
		for i := 0; i < len(words); i++ {
			if i+1 < len(words) && strings.EqualFold(words[i+1], "LIST") {
				out = append(out, SweepSpec{Mode: SweepList, Var: words[i]})
				cur = &out[len(out)-1]
				i++
				continue
			}
			if cur == nil {
				return nil, fmt.Errorf("sweep value %q before LIST", words[i])
			}
			cur.Values = append(cur.Values, words[i])
		}
		return out, nil
	case SweepData:
		for _, w := range words {
			if len(w) >= 4 && strings.EqualFold(w[:4], "DATA") {
				w = w[4:]
			}
			if w = strings.TrimPrefix(w, "="); w == "" {
				continue
			}
			out = append(out, SweepSpec{Mode: SweepData, Var: w})
		}
		return out, nil
	}
	for i := 0; i < len(words); {
		if strings.EqualFold(words[i], string(mode)) {
			i++
		}
		if i+4 > len(words) {
			return out, fmt.Errorf("incomplete %s sweep: %s", mode, strings.Join(words[i:], " "))
		}
		out = append(out, SweepSpec{Mode: mode, Var: words[i], Start: words[i+1], Stop: words[i+2], Step: words[i+3]})
		i += 4
	}
	return out, nil
}

// Table is a lookup-table expression of a controlled source.
type Table struct {
	Expr  string
	Pairs [][2]string
}

func (t Table) SpiceString() string {
	parts := make([]string, len(t.Pairs))
	for i, p := range t.Pairs {
		parts[i] = "(" + p[0] + "," + p[1] + ")"
	}
	return "TABLE " + InnerBraces(t.Expr) + "=" + strings.Join(parts, " ")
}

// PolyControl is a controlling node pair or a controlling device.
type PolyControl struct {
	Pos, Neg *ENode
	Device   *Device
	Name     string // unresolved device name
}

func (c PolyControl) SpiceString() string {
	switch {
	case c.Device != nil:
		return c.Device.FullName()
	case c.Pos != nil:
		return c.Pos.Name() + " " + c.Neg.Name()
	default:
		return c.Name
	}
}

// Poly is a polynomial controlled source.
type Poly struct {
	Degree   string
	Controls []PolyControl
	Coeffs   []string
}

func (p *Poly) SpiceString() string {
	parts := []string{"POLY(" + p.Degree + ")"}
	for _, c := range p.Controls {
		parts = append(parts, c.SpiceString())
	}
	parts = append(parts, p.Coeffs...)
	return strings.Join(parts, " ")
}

// Schedule is the time/max-step schedule of .TRAN.
type Schedule [][2]string

func (s Schedule) SpiceString() string {
	if len(s) == 0 {
		return ""
	}
	parts := make([]string, 0, 2*len(s))
	for _, p := range s {
		parts = append(parts, p[0], p[1])
	}
	return "{schedule(" + strings.Join(parts, ", ") + ")}"
}

// IC is one initial condition of .IC / .NODESET.
type IC struct {
	Kind  string
	Node  *ENode
	Value string
}

// ICList holds the conditions of one line.
type ICList []IC

func (l ICList) SpiceString() string {
	parts := make([]string, len(l))
	for i, ic := range l {
		parts[i] = strings.ToUpper(ic.Kind) + "(" + ic.Node.Name() + ")=" + ic.Value
	}
	return strings.Join(parts, " ")
}

// measureTypes lists the measurements each analysis accepts.
var measureTypes = map[string][]string{
	"AC":   {"AT", "AVG", "PARAM", "EQN", "FIND", "MAX", "MIN", "PP", "WHEN"},
	"DC":   {"AT", "AVG", "PARAM", "EQN", "ERROR", "FIND", "MAX", "MIN", "PP", "WHEN"},
	"TRAN": {"AT", "AVG", "DERIV", "DUTY", "EQN", "ERROR", "FIND", "FOUR", "FREQ", "INTEG", "MAX", "MIN", "OFF_TIME", "ON_TIME", "PP", "RMS", "WHEN", "TRIG", "TARG"},
}

// ValidMeasure reports whether measure type m is allowed for analysis.
func ValidMeasure(analysis, m string) bool {
	for _, t := range measureTypes[strings.ToUpper(analysis)] {
		if t == strings.ToUpper(m) {
			return true
		}
	}
	return false
}

// Measure is the body of a .MEAS line after the result name.
type Measure struct {
	Analysis        string
	Type            string
	TypeParams      ParamList
	Qualifier       string
	QualifierParams ParamList
}

func (m *Measure) SpiceString() string {
	var b strings.Builder
	write := func(head string, params ParamList) {
		if head == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToUpper(head))
		for _, p := range params {
			b.WriteByte(' ')
			b.WriteString(p.Name)
			if p.Value != "" {
				b.WriteString("=" + p.Value)
			}
		}
	}
	write(m.Type, m.TypeParams)
	write(m.Qualifier, m.QualifierParams)
	return b.String()
}

// InnerBraces drops braces nested inside an outer pair: {a*{b}} becomes
// {a*b}. Text without an outer pair is returned unchanged.
func InnerBraces(s string) string {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return s
	}
	inner := strings.NewReplacer("{", "", "}", "").Replace(s[1 : len(s)-1])
	return "{" + inner + "}"
}
