package instctx

import (
	"errors"
	"math"
	"testing"

	"netxlate/internal/diag"
	"netxlate/internal/ordered"
	"netxlate/internal/scope"
	"netxlate/internal/source"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// netBuilder assembles a scope tree statement by statement.
type netBuilder struct {
	t    *testing.T
	sess *scope.Session
	bag  *diag.Bag
	line uint32
}

func newNet(t *testing.T) *netBuilder {
	t.Helper()
	bag := diag.NewBag(64)
	return &netBuilder{t: t, sess: scope.NewSession(scope.Options{CaseInsensitive: true}, diag.BagReporter{Bag: bag}), bag: bag}
}

func (n *netBuilder) next() []uint32 {
	n.line++
	return []uint32{n.line}
}

func (n *netBuilder) add(st stmt.Statement) {
	n.t.Helper()
	if err := n.sess.Add(st); err != nil {
		n.t.Fatalf("add %T: %v", st, err)
	}
}

// subckt opens a subcircuit with the given default params (name, value pairs).
func (n *netBuilder) subckt(name string, params ...string) *stmt.Command {
	cmd := stmt.NewCommand(name, ".SUBCKT", ".SUBCKT", "top.cir", source.Span{}, n.next())
	for i := 0; i+1 < len(params); i += 2 {
		cmd.SetParam(params[i], params[i+1])
	}
	n.add(cmd)
	n.sess.PushScope(cmd)
	return cmd
}

func (n *netBuilder) ends() { n.sess.PopScope() }

func (n *netBuilder) inst(name string, sub *stmt.Command, params ...string) *stmt.Device {
	dev := stmt.NewDevice(name, stmt.Identity{Type: "X", LocalType: "X"}, "top.cir", source.Span{}, n.next())
	dev.SetProp(token.SubcktName, sub)
	var pl stmt.ParamList
	for i := 0; i+1 < len(params); i += 2 {
		pl = pl.With(params[i], params[i+1])
	}
	if len(pl) > 0 {
		dev.SetProp(token.Params, pl)
	}
	n.add(dev)
	return dev
}

func (n *netBuilder) param(params ...string) *stmt.Command {
	cmd := stmt.NewCommand("", ".PARAM", ".PARAM", "top.cir", source.Span{}, n.next())
	for i := 0; i+1 < len(params); i += 2 {
		cmd.SetParam(params[i], params[i+1])
	}
	n.add(cmd)
	return cmd
}

func (n *netBuilder) fn(name string, args []string, body string) {
	cmd := stmt.NewCommand(name, ".FUNC", ".FUNC", "top.cir", source.Span{}, n.next())
	cmd.SetProp(token.FuncNameValue, stmt.Text(name))
	cmd.SetProp(token.FuncArgList, stmt.Words(args))
	cmd.SetProp(token.FuncExpression, stmt.Text(body))
	n.add(cmd)
}

func (n *netBuilder) has(code diag.Code) bool {
	for _, d := range n.bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestNestedChainGetsOneContext(t *testing.T) {
	n := newNet(t)
	n.fn("f", []string{"x"}, "{x*2}")
	b := n.subckt("b", "w", "1")
	g := n.param("g", "{f(w)}")
	n.ends()
	a := n.subckt("a")
	x2 := n.inst("2", b, "w", "3")
	n.ends()
	n.inst("1", a)

	ctxs := New(n.sess, diag.BagReporter{Bag: n.bag}).Trace()
	if len(ctxs) != 2 || !ctxs[0].Global {
		t.Fatalf("contexts = %d, want global plus one", len(ctxs))
	}
	c := ctxs[1]
	if got := c.Hierarchy(); got != "X1:X2:" {
		t.Errorf("hierarchy = %q", got)
	}
	if len(c.Calls) != 1 || c.Calls[0].Param != "X1:X2:G" || c.Calls[0].Expr != "F(W)" {
		t.Fatalf("calls = %+v", c.Calls)
	}
	if got := c.Params.Value("W"); got != "3" {
		t.Errorf("instance override lost: W = %q", got)
	}
	if !n.has(diag.CtxFunctionCall) {
		t.Errorf("call must be reported")
	}

	NewApplier(Numeric{}, diag.BagReporter{Bag: n.bag}).Apply(ctxs)
	if got := g.Params.Value("g"); got != "{FN_G_1}" {
		t.Errorf(".PARAM g = %q", got)
	}
	if got := b.Params.Value("FN_G_1"); got != "0" {
		t.Errorf("subcircuit default = %q", got)
	}
	pl, _ := x2.Prop(token.Params).(stmt.ParamList)
	if v, ok := pl.Get("FN_G_1"); !ok || v != "6" {
		t.Errorf("X2 params = %v", pl)
	}
}

func TestSiblingInstancesShareParameter(t *testing.T) {
	n := newNet(t)
	n.fn("f", []string{"x"}, "{x*2}")
	b := n.subckt("b", "w", "1")
	n.param("g", "{f(w)+1}")
	n.ends()
	x1 := n.inst("1", b)
	x2 := n.inst("2", b, "w", "2")

	ctxs := New(n.sess, nil).Trace()
	if len(ctxs) != 3 {
		t.Fatalf("contexts = %d, want 3", len(ctxs))
	}
	NewApplier(nil, nil).Apply(ctxs)
	if b.Params.Len() != 2 {
		t.Errorf("subcircuit params = %v", b.Params.Keys())
	}
	for _, c := range []struct {
		dev  *stmt.Device
		want string
	}{{x1, "2"}, {x2, "4"}} {
		pl, _ := c.dev.Prop(token.Params).(stmt.ParamList)
		if v, _ := pl.Get("FN_G_1"); v != c.want {
			t.Errorf("%s passes %q, want %q", c.dev.FullName(), v, c.want)
		}
	}
}

func TestTopLevelCallReplacedByValue(t *testing.T) {
	n := newNet(t)
	n.fn("f", []string{"x"}, "{x+1}")
	p := n.param("a", "2", "b", "{f(a)*3}")

	ctxs := New(n.sess, nil).Trace()
	if len(ctxs) != 1 || len(ctxs[0].Calls) != 1 {
		t.Fatalf("contexts = %d", len(ctxs))
	}
	NewApplier(Numeric{}, nil).Apply(ctxs)
	if got := p.Params.Value("b"); got != "{3*3}" {
		t.Errorf("b = %q", got)
	}
}

func TestSimulatorFunctionsLeftAlone(t *testing.T) {
	n := newNet(t)
	b := n.subckt("b", "w", "4")
	n.param("g", "{sqrt(w)+exp(1)}")
	n.ends()
	n.inst("1", b)

	for _, c := range New(n.sess, nil).Trace() {
		if len(c.Calls) != 0 {
			t.Errorf("%s records %+v", c.Hierarchy(), c.Calls)
		}
	}
}

func TestNestedCallRecordedOnce(t *testing.T) {
	n := newNet(t)
	n.fn("f", []string{"x"}, "{x*2}")
	n.fn("h", []string{"x"}, "{x+1}")
	b := n.subckt("b", "w", "1")
	n.param("g", "{f(h(w))}")
	n.ends()
	n.inst("1", b)

	ctxs := New(n.sess, nil).Trace()
	if len(ctxs) != 2 || len(ctxs[1].Calls) != 1 {
		t.Fatalf("calls = %+v", ctxs[len(ctxs)-1].Calls)
	}
	v, err := Numeric{}.Eval(ctxs[1], ctxs[1].Calls[0])
	if err != nil || v != 4 {
		t.Errorf("f(h(1)) = %v, %v", v, err)
	}
}

func TestEvaluationErrorFallsBackToZero(t *testing.T) {
	n := newNet(t)
	n.fn("f", []string{"x"}, "{x*2}")
	b := n.subckt("b")
	n.param("g", "{f(q)}")
	n.ends()
	x1 := n.inst("1", b)

	NewApplier(Numeric{}, diag.BagReporter{Bag: n.bag}).Apply(New(n.sess, nil).Trace())
	pl, _ := x1.Prop(token.Params).(stmt.ParamList)
	if v, _ := pl.Get("FN_G_1"); v != "0" {
		t.Errorf("X1 passes %q", v)
	}
	if !n.has(diag.CtxEvaluation) {
		t.Errorf("failed evaluation must warn")
	}
}

type nanEvaluator struct{}

func (nanEvaluator) Eval(*Context, Call) (float64, error) { return math.NaN(), nil }

func TestNaNBecomesZero(t *testing.T) {
	n := newNet(t)
	n.fn("f", []string{"x"}, "{x}")
	p := n.param("b", "{f(1)}")
	NewApplier(nanEvaluator{}, nil).Apply(New(n.sess, nil).Trace())
	if got := p.Params.Value("b"); got != "{0}" {
		t.Errorf("b = %q", got)
	}
}

func TestRecursiveInstanceWarns(t *testing.T) {
	n := newNet(t)
	a := n.subckt("a")
	n.inst("1", a)
	n.ends()
	n.inst("0", a)

	ctxs := New(n.sess, diag.BagReporter{Bag: n.bag}).Trace()
	if !n.has(diag.CtxRecursiveSubckt) {
		t.Errorf("recursion must warn")
	}
	if len(ctxs) != 2 || ctxs[1].Hierarchy() != "X0:" {
		t.Errorf("contexts = %d", len(ctxs))
	}
}

func TestUnknownSubcircuitWarns(t *testing.T) {
	n := newNet(t)
	dev := stmt.NewDevice("1", stmt.Identity{Type: "X"}, "top.cir", source.Span{}, n.next())
	dev.SetProp(token.SubcktName, stmt.Text("missing"))
	n.add(dev)

	ctxs := New(n.sess, diag.BagReporter{Bag: n.bag}).Trace()
	if len(ctxs) != 1 {
		t.Errorf("contexts = %d, want only the global one", len(ctxs))
	}
	if !n.has(diag.CtxUnresolvedSubckt) {
		t.Errorf("missing subcircuit must warn")
	}
}

func TestNumericExpressions(t *testing.T) {
	params := ordered.New[string, string](4)
	params.Set("W", "2")
	params.Set("L", "W*3")
	params.Set("LOOP", "LOOP+1")
	c := &Context{Params: params, Funcs: map[string]Func{"SQ": {Args: []string{"X"}, Body: "X*X"}}}

	cases := []struct {
		in   string
		want float64
	}{
		{"2*3+1", 7},
		{"1k", 1000},
		{"2.5meg", 2.5e6},
		{"3m", 3e-3},
		{"1.5e-3", 1.5e-3},
		{"2**3", 8},
		{"2^3", 8},
		{"(1+2)*L", 18},
		{"W>1 ? 5 : 6", 5},
		{"W<1 && 1 || 0", 0},
		{"max(2,L)", 6},
		{"limit(5,0,3)", 3},
		{"sq(W+1)", 9},
		{"-W+10", 8},
		{"{W}/4", 0.5},
	}
	for _, tc := range cases {
		got, err := Numeric{}.Eval(c, Call{Expr: tc.in})
		if err != nil {
			t.Errorf("%s: %v", tc.in, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-12*math.Max(1, math.Abs(tc.want)) {
			t.Errorf("%s = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := (Numeric{}).Eval(c, Call{Expr: "LOOP"}); !errors.Is(err, ErrSyntax) {
		t.Errorf("self reference: %v", err)
	}
	if _, err := (Numeric{}).Eval(c, Call{Expr: "Q+1"}); !errors.Is(err, ErrUndefined) {
		t.Errorf("unknown name: %v", err)
	}
	if _, err := (Numeric{}).Eval(c, Call{Expr: "1+"}); err == nil {
		t.Errorf("dangling operator accepted")
	}
}
