package stmt

import (
	"testing"

	"netxlate/internal/source"
	"netxlate/internal/token"
)

func TestParseSweep(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
		err   bool
	}{
		{name: "lin", words: []string{"V1", "0", "5", "1"}, want: "LIN V1 0 5 1"},
		{name: "nested lin", words: []string{"V1", "0", "5", "1", "V2", "0", "1", "0.5"}, want: "LIN V1 0 5 1 LIN V2 0 1 0.5"},
		{name: "dec", words: []string{"DEC", "V1", "1", "100", "10"}, want: "DEC V1 1 100 10"},
		{name: "list", words: []string{"R1", "LIST", "1k", "2k", "5k"}, want: "R1 LIST 1k 2k 5k"},
		{name: "data", words: []string{"DATA=table"}, want: "DATA=table"},
		{name: "incomplete", words: []string{"V1", "0", "5"}, err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw, err := ParseSweep(tt.words)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error, got %q", sw.SpiceString())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := sw.SpiceString(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransient(t *testing.T) {
	tr, err := NewTransient("pulse", []string{"0", "1", "0", "1n", "1n", "5n", "10n"})
	if err != nil {
		t.Fatalf("pulse: %v", err)
	}
	if got := tr.SpiceString(); got != "PULSE(0 1 0 1n 1n 5n 10n)" {
		t.Errorf("pulse = %q", got)
	}
	if _, err := NewTransient("SIN", []string{"0", "1", "2", "3", "4", "5", "6"}); err == nil {
		t.Errorf("SIN with seven arguments must fail")
	}
	if _, err := NewTransient("RAMP", nil); err == nil {
		t.Errorf("unknown waveform must fail")
	}

	pwl, _ := NewTransient("PWL", []string{"0", "0", "1n", "1"})
	if got := pwl.SpiceString(); got != "PWL(0 0 1n 1)" {
		t.Errorf("pwl = %q", got)
	}
	file, _ := NewTransient("PWL", []string{"FILE", `"data/src.csv"`})
	if got := file.PWLFile(); got != "data/src.csv" {
		t.Errorf("PWLFile = %q", got)
	}
	if got := file.SpiceString(); got != `PWL FILE "src.csv"` {
		t.Errorf("pwl file = %q", got)
	}
}

func TestCompositeValues(t *testing.T) {
	n1, n2 := NewENode("1"), NewENode("2")
	ctl := NewDevice("ctl", Identity{Type: "V"}, "", source.Span{}, nil)
	poly := &Poly{
		Degree:   "2",
		Controls: []PolyControl{{Pos: n1, Neg: n2}, {Device: ctl}},
		Coeffs:   []string{"0", "1", "0.5"},
	}
	if got := poly.SpiceString(); got != "POLY(2) 1 2 Vctl 0 1 0.5" {
		t.Errorf("poly = %q", got)
	}
	tab := Table{Expr: "{V(1)*{k}}", Pairs: [][2]string{{"0", "0"}, {"1", "2"}}}
	if got := tab.SpiceString(); got != "TABLE {V(1)*k}=(0,0) (1,2)" {
		t.Errorf("table = %q", got)
	}
	ics := ICList{{Kind: "v", Node: n1, Value: "1.5"}}
	if got := ics.SpiceString(); got != "V(1)=1.5" {
		t.Errorf("ic = %q", got)
	}
	sched := Schedule{{"0", "1n"}, {"1u", "10n"}}
	if got := sched.SpiceString(); got != "{schedule(0, 1n, 1u, 10n)}" {
		t.Errorf("schedule = %q", got)
	}
	m := &Measure{Analysis: "TRAN", Type: "trig", TypeParams: ParamList{{"V(1)", ""}, {"VAL", "0.5"}}, Qualifier: "RISE", QualifierParams: ParamList{{"1", ""}}}
	if got := m.SpiceString(); got != "TRIG V(1) VAL=0.5 RISE 1" {
		t.Errorf("measure = %q", got)
	}
	if !ValidMeasure("tran", "duty") || ValidMeasure("ac", "duty") {
		t.Errorf("ValidMeasure table mismatch")
	}
	if got := (AC{Mag: "1", Phase: "90"}).SpiceString(); got != "AC 1 90" {
		t.Errorf("ac = %q", got)
	}
}

func TestParamListWithKeepsSlot(t *testing.T) {
	p := ParamList{{"W", "1u"}, {"L", "2u"}}
	q := p.With("W", "3u").With("M", "2")
	if got := q.SpiceString(); got != "W=3u L=2u M=2" {
		t.Errorf("with = %q", got)
	}
	if p[0].Value != "1u" {
		t.Errorf("With must not mutate the receiver")
	}
}

func TestDeviceBind(t *testing.T) {
	d := NewDevice("1", Identity{Type: "M"}, "top.cir", source.Span{}, []uint32{3})
	d.SetLazy("nch", []Candidate{{Kind: KindMasterModel}})
	node := NewENode("nch")
	if d.Bind("nch", node) {
		t.Fatalf("a node must not satisfy a model slot")
	}
	if !d.Pending() {
		t.Fatalf("slot dropped after invalid bind")
	}
	mm := NewMasterModel("nch")
	if !d.Bind("nch", mm) {
		t.Fatalf("model bind rejected")
	}
	if d.Model() != mm || d.Pending() {
		t.Errorf("model = %v pending = %v", d.Model(), d.Pending())
	}
	if d.PropText(token.ModelName) != "nch" {
		t.Errorf("rendered model = %q", d.PropText(token.ModelName))
	}

	x := NewDevice("1", Identity{Type: "X"}, "top.cir", source.Span{}, []uint32{4})
	x.SetProp(token.SubcktName, NewLazy("amp"))
	x.SetLazy("amp", []Candidate{{Kind: KindCommand}})
	def := NewCommand("amp", ".SUBCKT", ".SUBCKT", "top.cir", source.Span{}, []uint32{9})
	if !x.Bind("amp", def) || x.Subckt() != def {
		t.Errorf("subcircuit reference not bound")
	}
}

func TestParamCandidateAcceptsAnything(t *testing.T) {
	d := NewDevice("1", Identity{Type: "R"}, "", source.Span{}, nil)
	d.SetLazy("rval", []Candidate{{Kind: KindMasterModel}, {Param: "R"}})
	if !d.IsValidBind("rval", NewENode("rval")) {
		t.Errorf("a parameter candidate accepts any definition")
	}
	if d.IsValidBind("other", NewENode("other")) {
		t.Errorf("no slot, no bind")
	}
}

func TestMasterModelBins(t *testing.T) {
	mm := NewMasterModel("SWX")
	a := NewModelDef("SWX.1", Identity{Type: "S", Level: "1"}, "", source.Span{}, nil)
	b := NewModelDef("swx.2", Identity{Type: "S", Level: "1"}, "", source.Span{}, nil)
	c := NewModelDef("other", Identity{Type: "S"}, "", source.Span{}, nil)
	if !mm.Add(a) || !mm.Add(b) || mm.Add(c) {
		t.Fatalf("bin aggregation mismatch: %d models", len(mm.Models))
	}
	if mm.Identity().Type != "S" {
		t.Errorf("shared identity = %+v", mm.Identity())
	}
	if root, ok := BinRoot("nch.12"); !ok || root != "nch" {
		t.Errorf("BinRoot = %q %v", root, ok)
	}
	if _, ok := BinRoot("nch.x"); ok {
		t.Errorf("non-numeric suffix is not a bin")
	}
}
