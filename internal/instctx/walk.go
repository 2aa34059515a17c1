package instctx

import (
	"fmt"
	"slices"
	"strings"

	"netxlate/internal/diag"
	"netxlate/internal/scope"
	"netxlate/internal/stmt"
)

// Tracer builds the contexts of one session.
type Tracer struct {
	sess *scope.Session
	rep  diag.Reporter

	contexts []*Context
	// globals are top-level child scopes seen so far, in walk order.
	globals []scope.ScopeID
}

func New(sess *scope.Session, rep diag.Reporter) *Tracer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Tracer{sess: sess, rep: rep}
}

// Trace walks every instantiation chain starting at the root and returns
// one context per distinct chain, preceded by the global context of the
// top level. Contexts come in walk order.
func (t *Tracer) Trace() []*Context {
	root := t.sess.Root()
	t.contexts = []*Context{{Scopes: []scope.ScopeID{root}, Global: true}}
	t.walk(root, nil, []scope.ScopeID{root})
	for _, c := range t.contexts {
		c.collect(t.sess)
		for _, call := range c.Calls {
			diag.ReportInfo(t.rep, diag.CtxFunctionCall, call.Command.Span,
				fmt.Sprintf("%s = %s is evaluated per instance", call.Param, call.Expr)).Emit()
		}
	}
	return t.contexts
}

func (t *Tracer) walk(id scope.ScopeID, path []Hop, include []scope.ScopeID) {
	sc := t.sess.Scope(id)
	if sc == nil {
		return
	}
	descended := false
	for _, uid := range sc.Statements() {
		dev, ok := t.sess.Stmt(uid).(*stmt.Device)
		if !ok || dev.Type != "X" {
			continue
		}
		name := dev.SubcktName()
		if name == "" {
			continue
		}
		if slices.ContainsFunc(path, func(h Hop) bool { return strings.EqualFold(h.Subckt.Name(), name) }) {
			diag.ReportWarning(t.rep, diag.CtxRecursiveSubckt, dev.Span,
				fmt.Sprintf("%s instantiates %s inside itself", dev.FullName(), name)).Emit()
			continue
		}
		target := t.subcktScope(id, dev, name)
		if !target.IsValid() {
			diag.ReportWarning(t.rep, diag.CtxUnresolvedSubckt, dev.Span,
				fmt.Sprintf("subcircuit %s of %s not found", name, dev.FullName())).Emit()
			continue
		}
		descended = true
		next := append(slices.Clip(path), Hop{Device: dev, Subckt: t.sess.Owner(target)})
		scopes := slices.Clip(include)
		if !slices.Contains(scopes, target) {
			scopes = append(scopes, target)
		}
		t.walk(target, next, scopes)
	}
	if !descended && len(path) > 0 {
		t.record(path, include)
	}
}

// record adds a context unless one already covers the chain.
func (t *Tracer) record(path []Hop, include []scope.ScopeID) {
	for _, c := range t.contexts {
		if c.Global {
			continue
		}
		if c.Exists(path, include) || c.NonTerminal(path) {
			return
		}
	}
	t.contexts = append(t.contexts, &Context{Path: path, Scopes: include})
}

// subcktScope finds the scope of the subcircuit name instantiated from
// scope id: definitions co-located with id or its ancestors first, then
// top-level library sections, then the definition the device was bound to.
func (t *Tracer) subcktScope(id scope.ScopeID, dev *stmt.Device, name string) scope.ScopeID {
	sess := t.sess
	for cur := id; cur.IsValid(); cur = sess.Scope(cur).Parent {
		if child := sess.GetChildScope(cur, name); child.IsValid() && sess.Scope(child).OwnerKind == scope.OwnerSubckt {
			return child
		}
	}
	root := sess.Scope(sess.Root())
	for _, cid := range root.Children {
		if sess.Scope(cid).OwnerKind != scope.OwnerLib {
			continue
		}
		if !slices.Contains(t.globals, cid) {
			t.globals = append(t.globals, cid)
		}
	}
	for _, g := range t.globals {
		if child := sess.GetChildScope(g, name); child.IsValid() && sess.Scope(child).OwnerKind == scope.OwnerSubckt {
			return child
		}
	}
	if def := dev.Subckt(); def != nil {
		for i := 1; i <= sess.NumScopes(); i++ {
			sid := scope.ScopeID(i)
			if sc := sess.Scope(sid); sc != nil && sc.Owner == def.UID {
				return sid
			}
		}
	}
	return scope.NoScopeID
}
