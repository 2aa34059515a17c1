package normalize

import (
	"reflect"
	"testing"

	"netxlate/internal/diag"
	"netxlate/internal/lexer"
	"netxlate/internal/netlist"
	"netxlate/internal/source"
	"netxlate/internal/token"
)

func normalizeText(t *testing.T, dialect, text string) ([]*netlist.Line, *diag.Bag) {
	t.Helper()
	toks, sev, msg := lexer.Tokenize(lexer.OptionsFor(dialect), text, source.Span{})
	bag := diag.NewBag(64)
	n := New(OptionsFor(dialect), diag.BagReporter{Bag: bag})
	lines := n.Line(token.Line{Raw: text, Tokens: toks, Severity: sev, Message: msg, Lines: []uint32{1}})
	return lines, bag
}

func TestVoltageDependentResistorBecomesSource(t *testing.T) {
	lines, _ := normalizeText(t, "pspice", "R1 1 0 {V(1,2)/2}")
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	l := lines[0]
	if l.Type != "B" || l.LocalType != "R" {
		t.Errorf("type = %s local = %s, want B from R", l.Type, l.LocalType)
	}
	if got := l.Known.Value(token.Expression); got != "{V(1,0)/({V(1,2)/2})}" {
		t.Errorf("expression = %q", got)
	}
	if l.Known.Value(token.Current) != "I" || l.Known.Has(token.Value) {
		t.Errorf("known objects = %v", l.Known.Keys())
	}
}

func TestHSPICEExpressionsAreWrapped(t *testing.T) {
	lines, _ := normalizeText(t, "hspice", "M1 d g s b nch W='2*wmin^2' L=1u")
	l := lines[0]
	if got := l.Params.Value("W"); got != "{2*wmin**2}" {
		t.Errorf("W = %q", got)
	}
	if got := l.Params.Value("L"); got != "1u" {
		t.Errorf("L = %q", got)
	}
	if l.Known.Value(token.ModelName) != "nch" {
		t.Errorf("model = %q", l.Known.Value(token.ModelName))
	}
	if want := []string{"d", "g", "s", "b"}; !reflect.DeepEqual(l.UnknownNodes, want) {
		t.Errorf("unknown nodes = %v", l.UnknownNodes)
	}
}

func TestParamLineSplitsFunctionsAndTemper(t *testing.T) {
	lines, _ := normalizeText(t, "hspice", ".PARAM f(x)='x^2' a='TEMPER+1'")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0].Type != ".PARAM" || lines[0].Params.Value("A") != "{XYCE_TEMPER+1}" {
		t.Errorf("param line = %s %v", lines[0].Type, lines[0].Params.Keys())
	}
	gp := lines[1]
	if gp.Type != ".GLOBAL_PARAM" || gp.Params.Value(TemperParam) != "25" || !gp.Has(netlist.FlagTop) {
		t.Errorf("temper line = %+v", gp)
	}
	fn := lines[2]
	if fn.Type != ".FUNC" || fn.Name != "f" {
		t.Fatalf("func line = %s %s", fn.Type, fn.Name)
	}
	if got := fn.Known.Value(token.FuncExpression); got != "{x**2}" {
		t.Errorf("body = %q", got)
	}
	if got := fn.List(token.FuncArgList); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("args = %v", got)
	}
}

func TestOptionsMovedIntoPackages(t *testing.T) {
	lines, bag := normalizeText(t, "hspice", ".OPTION ITL1=100 VNTOL=1u POST")
	var got []string
	for _, l := range lines {
		if l.Type == netlist.TypeComment {
			got = append(got, "comment:"+l.Comment)
			continue
		}
		pkg := l.Known.Value(token.OptionPkgType)
		for _, k := range l.Params.Keys() {
			got = append(got, pkg+":"+k+"="+l.Params.Value(k))
		}
	}
	want := []string{"NONLIN:MAXSTEP=100", "NONLIN:ABSTOL=1u", "NONLIN-TRAN:ABSTOL=1u", "comment:.OPTION POST=1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("options\n got %v\nwant %v", got, want)
	}
	if !bag.HasWarnings() {
		t.Errorf("dropping POST must warn")
	}
}

func TestGlobalSplitAndBinning(t *testing.T) {
	lines, _ := normalizeText(t, "hspice", ".GLOBAL vdd vss")
	if len(lines) != 2 || lines[1].List(token.NodeList)[0] != "vss" {
		t.Fatalf("global split = %d lines", len(lines))
	}

	n := New(OptionsFor("hspice"), nil)
	first := n.Line(tokenLine(".model nch.1 nmos level=54"))
	second := n.Line(tokenLine(".model nch.2 nmos level=54"))
	if len(first) != 2 || len(second) != 1 {
		t.Fatalf("binning option must be synthesized once: %d %d", len(first), len(second))
	}
	opt := first[1]
	if opt.Type != ".OPTIONS" || opt.Known.Value(token.OptionPkgType) != "PARSER" || !opt.Has(netlist.FlagTop) {
		t.Errorf("binning option = %+v", opt)
	}
	if first[0].Known.Value(token.DeviceType) != "M" {
		t.Errorf("model device type = %q", first[0].Known.Value(token.DeviceType))
	}
}

func tokenLine(text string) token.Line {
	toks, _, _ := lexer.Tokenize(lexer.OptionsFor("hspice"), text, source.Span{})
	return token.Line{Raw: text, Tokens: toks}
}

func TestTokenizerErrorKeepsLine(t *testing.T) {
	n := New(OptionsFor("hspice"), nil)
	lines := n.Line(token.Line{Raw: "Q1 c b", Severity: token.SevError, Message: "too few nodes"})
	if len(lines) != 1 || lines[0].Type != netlist.TypeComment || lines[0].Comment != "Q1 c b" {
		t.Fatalf("error line = %+v", lines)
	}
}

func TestExpressionHelpers(t *testing.T) {
	if got, ok := SpaceTernary("a>b?1:2"); !ok || got != "a>b ? 1 : 2" {
		t.Errorf("SpaceTernary = %q %v", got, ok)
	}
	if _, ok := SpaceTernary("a?b"); ok {
		t.Errorf("unbalanced ternary must be reported")
	}
	if got := SIPrefix("2a+3x*w2a"); got != "2e-18+3meg*w2a" {
		t.Errorf("SIPrefix = %q", got)
	}
	if got := WrapExpression("-1.5"); got != "-1.5" {
		t.Errorf("WrapExpression number = %q", got)
	}
	if got := CleanOutputVariable("V([out], [in])"); got != "V(out,in)" {
		t.Errorf("CleanOutputVariable = %q", got)
	}
	if got := CleanOutputVariable("par('v(1)*2')"); got != "{v(1)*2}" {
		t.Errorf("par cleanup = %q", got)
	}
}
