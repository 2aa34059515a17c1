package mapping

import (
	"strings"
	"testing"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/lexer"
	"netxlate/internal/netlist"
	"netxlate/internal/normalize"
	"netxlate/internal/scope"
	"netxlate/internal/source"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

type fixture struct {
	t       *testing.T
	dialect string
	norm    *normalize.Normalizer
	sess    *scope.Session
	bag     *diag.Bag
	f       *Factory
	emit    *Emitter
	line    uint32
}

func newFixture(t *testing.T, dialect string) *fixture {
	t.Helper()
	out, err := descriptor.Load("xyce")
	if err != nil {
		t.Fatalf("load xyce: %v", err)
	}
	in, err := descriptor.Load(dialect)
	if err != nil {
		t.Fatalf("load %s: %v", dialect, err)
	}
	bag := diag.NewBag(128)
	rep := diag.BagReporter{Bag: bag}
	sess := scope.NewSession(scope.Options{CaseInsensitive: true}, rep)
	return &fixture{
		t:       t,
		dialect: dialect,
		norm:    normalize.New(normalize.OptionsFor(dialect), rep),
		sess:    sess,
		bag:     bag,
		f:       NewFactory(out, in, sess, rep),
		emit:    NewEmitter(out),
	}
}

// lines tokenizes and normalizes one source line.
func (x *fixture) lines(text string) []*netlist.Line {
	x.t.Helper()
	x.line++
	toks, sev, msg := lexer.Tokenize(lexer.OptionsFor(x.dialect), text, source.Span{})
	return x.norm.Line(token.Line{Raw: text, Tokens: toks, Severity: sev, Message: msg, Lines: []uint32{x.line}})
}

// build runs every line of text through the factory and returns the
// results in order.
func (x *fixture) build(text string) []Result {
	x.t.Helper()
	var out []Result
	for _, src := range strings.Split(text, "\n") {
		for _, l := range x.lines(src) {
			res, err := x.f.Build(l)
			if err != nil {
				x.t.Fatalf("build %q: %v", src, err)
			}
			out = append(out, res)
		}
	}
	return out
}

func (x *fixture) one(text string) Result {
	x.t.Helper()
	res := x.build(text)
	if len(res) != 1 {
		x.t.Fatalf("%q built %d statements, want 1", text, len(res))
	}
	return res[0]
}

func (x *fixture) hasCode(code diag.Code) bool {
	for _, d := range x.bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestUnsupportedDirectiveKeptAsComment(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.one(".PROTECT")
	if res.Outcome != Commented {
		t.Fatalf("outcome = %s, want commented", res.Outcome)
	}
	if got := x.emit.Statement(res.Stmt); got != "* .PROTECT" {
		t.Errorf("emitted %q", got)
	}
	if !x.hasCode(diag.MapUnsupportedDirective) {
		t.Errorf("missing unsupported directive warning")
	}
}

func TestVoltageDependentResistorWrittenAsSource(t *testing.T) {
	x := newFixture(t, "pspice")
	res := x.one("R1 1 0 {V(1,2)/2}")
	dev, ok := res.Stmt.(*stmt.Device)
	if !ok {
		t.Fatalf("statement = %T", res.Stmt)
	}
	if dev.FullName() != "B1" || dev.LocalType != "R" {
		t.Errorf("device = %s from %s", dev.FullName(), dev.LocalType)
	}
	if got := x.emit.Statement(dev); got != "B1 1 0 I={V(1,0)/({V(1,2)/2})}" {
		t.Errorf("emitted %q", got)
	}
}

func TestAmbiguousResistorValueSettlesToParam(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.build("R1 a b rval\n.PARAM rval=1k")
	dev := res[0].Stmt.(*stmt.Device)
	if !dev.Pending() {
		t.Fatalf("R1 must wait for rval")
	}
	x.sess.ResolveLazyBindings()
	if got := x.emit.Statement(dev); got != "R1 a b R={rval}" {
		t.Errorf("emitted %q", got)
	}
	if len(x.sess.Lazies()) != 0 {
		t.Errorf("lazies left: %d", len(x.sess.Lazies()))
	}
}

func TestModelLevelAndVersionMapped(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.build(".MODEL nch NMOS LEVEL=54 VTH0=0.4 ACM=2\nM1 d g s b nch W=1u L=1u")
	md := res[0].Stmt.(*stmt.ModelDef)
	if md.Level != "14" || md.Version != "4.8.1" {
		t.Errorf("identity = level %s version %s", md.Level, md.Version)
	}
	if got := x.emit.Statement(md); got != ".MODEL nch NMOS LEVEL=14 VERSION=4.8.1 VTH0=0.4" {
		t.Errorf("model = %q", got)
	}
	if !x.hasCode(diag.MapParamRemoved) {
		t.Errorf("dropping ACM must warn")
	}

	dev := res[1].Stmt.(*stmt.Device)
	if dev.Model() == nil || dev.Level != "14" {
		t.Fatalf("M1 bound to %v level %s", dev.Model(), dev.Level)
	}
	if got := x.emit.Statement(dev); got != "M1 d g s b nch W=1u L=1u" {
		t.Errorf("device = %q", got)
	}
}

func TestMultiplierFoldedIntoArea(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.build(".MODEL dmod D IS=1e-14\nD1 a k dmod 2 M=4")
	dev := res[1].Stmt.(*stmt.Device)
	if got := dev.Params.Value("AREA"); got != "{2*4}" {
		t.Errorf("AREA = %q", got)
	}
	if dev.Params.Has("M") || dev.Props.Has(token.AreaValue) {
		t.Errorf("M and the positional area must be gone: %v", dev.Params.Keys())
	}
	if got := x.emit.Statement(dev); strings.Contains(got, " M=") || !strings.HasPrefix(got, "D1 a k dmod AREA={2*4}") {
		t.Errorf("emitted %q", got)
	}
}

func TestDeviceBeforeModelIsDeferred(t *testing.T) {
	x := newFixture(t, "hspice")
	lines := x.lines("D1 a k dmod")
	res, err := x.f.Build(lines[0])
	if err != nil || res.Outcome != Deferred {
		t.Fatalf("outcome = %s, err = %v", res.Outcome, err)
	}
	if !lines[0].Has(netlist.FlagUnresolvedDevice) {
		t.Errorf("deferred line must be flagged")
	}
	x.build(".MODEL dmod D IS=1e-14")

	res, err = x.f.Resolve(lines[0])
	if err != nil || res.Outcome != Built {
		t.Fatalf("resolve outcome = %s, err = %v", res.Outcome, err)
	}
	dev := res.Stmt.(*stmt.Device)
	if dev.Model() == nil || dev.Model().Name() != "dmod" {
		t.Errorf("D1 model = %v", dev.Model())
	}
	if lines[0].Has(netlist.FlagUnresolvedDevice) {
		t.Errorf("flag must be cleared")
	}
}

func TestDeviceNamingSubcircuitBecomesInstance(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.build(".SUBCKT dmod a k\nR1 a k 1k\n.ENDS dmod\nD1 n1 n2 dmod")
	dev := res[len(res)-1].Stmt.(*stmt.Device)
	if dev.FullName() != "XD1" {
		t.Fatalf("instance = %s", dev.FullName())
	}
	if dev.Subckt() == nil {
		t.Errorf("XD1 must be bound to its subcircuit")
	}
}

func TestTempDirectiveConverted(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.one(".TEMP 50")
	if got := x.emit.Statement(res.Stmt); got != ".OPTIONS DEVICE TEMP=50" {
		t.Errorf("single temperature = %q", got)
	}

	res = x.one(".TEMP 0 25 50")
	if got := x.emit.Statement(res.Stmt); got != ".STEP TEMP LIST 0 25 50" {
		t.Errorf("temperature list = %q", got)
	}
}

func TestPrintFollowsFirstAnalysis(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.build(".PRINT V(out)\n.AC DEC 10 1 1G")
	pr := res[0].Stmt.(*stmt.Command)
	if got := pr.PropText(token.AnalysisType); got != "TRAN" {
		t.Fatalf("default analysis = %q", got)
	}
	x.f.FixPrintAnalysis()
	if got := x.emit.Statement(pr); got != ".PRINT AC V(out)" {
		t.Errorf("emitted %q", got)
	}
}

func TestReservedParameterRenamed(t *testing.T) {
	x := newFixture(t, "hspice")
	res := x.one(".PARAM temp=25 x='temp*2'")
	if got := x.emit.Statement(res.Stmt); got != ".PARAM XYCE_TEMP=25 X={XYCE_TEMP*2}" {
		t.Errorf("emitted %q", got)
	}
	if !x.hasCode(diag.MapConflictingVariable) {
		t.Errorf("rename must warn")
	}
	if got := x.f.SortedRenames(); len(got) != 1 || got[0] != "TEMP=XYCE_TEMP" {
		t.Errorf("renames = %v", got)
	}
}

func TestLongLinesWrapped(t *testing.T) {
	out, err := descriptor.Load("xyce")
	if err != nil {
		t.Fatal(err)
	}
	e := NewEmitter(out)
	var words []string
	for range 12 {
		words = append(words, "P1234=5678901")
	}
	words = append(words, "E={a + b + c}")
	got := e.wrap(".PARAM " + strings.Join(words, " "))
	rows := strings.Split(got, "\n")
	if len(rows) < 2 {
		t.Fatalf("line not wrapped: %q", got)
	}
	for i, r := range rows {
		if len(r) > out.Admin.LineWidth {
			t.Errorf("row %d is %d wide", i, len(r))
		}
		if i > 0 && !strings.HasPrefix(r, "+ ") {
			t.Errorf("row %d = %q, want continuation", i, r)
		}
	}
	if !strings.Contains(got, "E={a + b + c}") {
		t.Errorf("braced expression split: %q", got)
	}
}

func TestSplitWordsKeepsGroups(t *testing.T) {
	got := splitWords(`V1 a 0 PWL(0 0 1n 1) 'x y' {a b}`)
	want := []string{"V1", "a", "0", "PWL(0 0 1n 1)", "'x y'", "{a b}"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitWords = %q", got)
	}
}

func TestOversizedPolyDegreeRejected(t *testing.T) {
	cases := []string{
		"E1 out 0 POLY(4611686018427387905) a b 1 2",
		"E2 out 0 POLY(3) a b 1 2",
		"F1 out 0 POLY(99) V1 V2 1 2",
	}
	for _, src := range cases {
		x := newFixture(t, "hspice")
		x.build(src)
		if !x.hasCode(diag.MapPolyWithoutControl) {
			t.Errorf("%q: missing POLY warning", src)
		}
	}
}

func TestOddTableValuesReported(t *testing.T) {
	x := newFixture(t, "hspice")
	x.build("E1 out 0 TABLE {V(a)} = (0,0) (1)")
	if !x.hasCode(diag.MapOddTableValues) {
		t.Errorf("missing odd TABLE warning")
	}
	if x.hasCode(diag.MapTooManyControlValues) {
		t.Errorf("odd TABLE reported as too many control values")
	}
}
