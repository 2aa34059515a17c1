package instctx

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"netxlate/internal/diag"
	"netxlate/internal/expr"
	"netxlate/internal/normalize"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

type callKey struct {
	owner stmt.UID
	key   string
	expr  string
}

// Applier writes evaluated calls back into the netlist.
type Applier struct {
	ev  Evaluator
	rep diag.Reporter

	names map[callKey]string
	seq   map[string]int
}

func NewApplier(ev Evaluator, rep diag.Reporter) *Applier {
	if ev == nil {
		ev = Numeric{}
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Applier{ev: ev, rep: rep, names: map[callKey]string{}, seq: map[string]int{}}
}

// Apply evaluates every call of every context. A call at the top level is
// replaced by its value. A call inside a subcircuit is replaced by a new
// subcircuit parameter, and each instance along the chain passes the value
// computed for its context.
func (a *Applier) Apply(ctxs []*Context) {
	for _, c := range ctxs {
		for _, call := range c.Calls {
			value := a.eval(c, call)
			if call.Owner == nil {
				a.replace(call.Command, call.Key, call.Expr, value)
				continue
			}
			name := a.UpdateSubckt(call)
			a.UpdateSubcktInstantiations(c, call, name, value)
		}
	}
}

func (a *Applier) eval(c *Context, call Call) string {
	v, err := a.ev.Eval(c, call)
	if err != nil {
		diag.ReportWarning(a.rep, diag.CtxEvaluation, call.Command.Span,
			fmt.Sprintf("cannot evaluate %s for %s: %v", call.Expr, call.Param, err)).
			WithNote(call.Command.Span, "0 is used instead").Emit()
		return "0"
	}
	if math.IsNaN(v) {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// UpdateSubckt introduces the parameter standing for call in its
// subcircuit and rewrites the .PARAM value to use it. The same call in
// the same parameter always gets the same name.
func (a *Applier) UpdateSubckt(call Call) string {
	k := callKey{owner: call.Owner.UID, key: strings.ToUpper(call.Key), expr: call.Expr}
	if name, ok := a.names[k]; ok {
		return name
	}
	base := fmt.Sprintf("FN_%s", k.key)
	a.seq[base]++
	name := fmt.Sprintf("%s_%d", base, a.seq[base])
	a.names[k] = name

	if !call.Owner.Params.Has(name) {
		call.Owner.SetParam(name, "0")
	}
	a.replace(call.Command, call.Key, call.Expr, name)
	return name
}

// UpdateSubcktInstantiations passes value for name on the instance of the
// chain that reaches the subcircuit of call. An instance that already
// passes another value keeps it.
func (a *Applier) UpdateSubcktInstantiations(c *Context, call Call, name, value string) {
	for _, h := range c.Path {
		if h.Subckt == nil || h.Subckt.UID != call.Owner.UID {
			continue
		}
		pl, _ := h.Device.Prop(token.Params).(stmt.ParamList)
		if old, ok := pl.Get(name); ok {
			if old != value {
				diag.ReportWarning(a.rep, diag.CtxConflictingValue, h.Device.Span,
					fmt.Sprintf("%s of %s is %s in %s and %s elsewhere", name, h.Device.FullName(), value, c.Hierarchy(), old)).
					WithNote(h.Device.Span, "first value kept").Emit()
			}
			return
		}
		h.Device.SetProp(token.Params, pl.With(name, value))
		return
	}
}

// replace substitutes with for every call matching text in param key of cmd.
func (a *Applier) replace(cmd *stmt.Command, key, text, with string) {
	value, ok := cmd.Params.Get(key)
	if !ok {
		return
	}
	for changed := true; changed; {
		changed = false
		for _, c := range expr.Calls(value) {
			if c.End == 0 || !strings.EqualFold(c.Text(), text) {
				continue
			}
			value = value[:c.Start] + with + value[c.End:]
			changed = true
			break
		}
	}
	if spaced, ok := normalize.SpaceTernary(value); ok {
		value = spaced
	}
	cmd.Params.Set(key, value)
}
