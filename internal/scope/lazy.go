package scope

import (
	"netxlate/internal/diag"
	"netxlate/internal/stmt"
)

// AddLazy makes listener wait for name. A placeholder visible from the
// current scope is reused, otherwise a new one is created there. cands
// are the concrete kinds the name may turn out to be.
func (s *Session) AddLazy(name string, listener stmt.Binder, cands []stmt.Candidate) *stmt.Lazy {
	return s.AddLazyTo(s.current, name, listener, cands)
}

// AddLazyTo is AddLazy for an explicit scope.
func (s *Session) AddLazyTo(id ScopeID, name string, listener stmt.Binder, cands []stmt.Candidate) *stmt.Lazy {
	lz, _ := s.GetObject(id, TagLazy, name).(*stmt.Lazy)
	if lz == nil {
		lz = stmt.NewLazy(name)
		// placeholders never conflict
		_ = s.AddTo(id, lz)
	}
	uid := s.Register(listener)
	listener.Common().SetLazy(name, cands)
	lz.Listen(uid)
	return lz
}

// Lazies returns the live placeholders in creation order.
func (s *Session) Lazies() []*stmt.Lazy {
	var out []*stmt.Lazy
	s.lazies.Each(func(uid stmt.UID, _ ScopeID) bool {
		if lz, ok := s.stmts.get(uid).(*stmt.Lazy); ok {
			out = append(out, lz)
		}
		return true
	})
	return out
}

// bindLazy hands def to every listener of lz and removes lz. Listeners
// that do not accept def keep their slot.
func (s *Session) bindLazy(lz *stmt.Lazy, def stmt.Statement) int {
	bound := 0
	for _, uid := range lz.Listeners {
		b, ok := s.stmts.get(uid).(stmt.Binder)
		if !ok {
			continue
		}
		if b.Bind(lz.Name(), def) {
			bound++
		}
	}
	s.removeLazy(lz)
	return bound
}

func (s *Session) removeLazy(lz *stmt.Lazy) {
	id, ok := s.lazies.Get(lz.UID)
	if !ok {
		return
	}
	k := s.key(TagLazy, lz.Name())
	for sc := s.scopes.get(id); sc != nil; sc = s.scopes.get(sc.Parent) {
		if uid, ok := sc.names[k]; ok && uid == lz.UID {
			delete(sc.names, k)
			break
		}
	}
	s.lazies.Delete(lz.UID)
	s.stmts.drop(lz.UID)
}

// ResolveLazyBindings settles every placeholder left after all input was
// read. A definition visible from the placeholder's scope (a model, a
// binned model root or a subcircuit) is bound; otherwise each listener
// drops its model candidate and, when a single parameter candidate is
// left, uses the name as a parameter expression for it.
func (s *Session) ResolveLazyBindings() {
	for _, lz := range s.Lazies() {
		id, _ := s.lazies.Get(lz.UID)
		if def := s.lookupDefinition(id, lz.Name()); def != nil {
			s.bindLazy(lz, def)
			continue
		}
		for _, uid := range lz.Listeners {
			st := s.stmts.get(uid)
			if st == nil {
				continue
			}
			s.settle(st, lz.Name())
		}
		s.removeLazy(lz)
	}
}

func (s *Session) lookupDefinition(id ScopeID, name string) stmt.Statement {
	if m := s.GetObject(id, TagModel, name); m != nil {
		return m
	}
	if root, ok := stmt.BinRoot(name); ok {
		if m := s.GetObject(id, TagModel, root); m != nil {
			return m
		}
	}
	if c := s.GetObject(id, TagSubckt, name); c != nil {
		return c
	}
	return nil
}

func (s *Session) settle(st stmt.Statement, name string) {
	b := st.Common()
	cands, ok := b.Slots.Get(name)
	if !ok {
		return
	}
	var rest []stmt.Candidate
	for _, c := range cands {
		if c.Param == "" && c.Kind == stmt.KindMasterModel {
			continue
		}
		rest = append(rest, c)
	}
	if len(rest) == 1 && rest[0].Param != "" {
		b.SetParam(rest[0].Param, "{"+name+"}")
		b.Slots.Delete(name)
		return
	}
	what := "model"
	if len(rest) > 0 && rest[0].Kind == stmt.KindCommand {
		what = "subcircuit"
	}
	label := name
	if d, ok := st.(*stmt.Device); ok {
		label = d.FullName() + ": " + name
	}
	diag.ReportWarning(s.rep, diag.ScpUnresolvedReference, b.Span, "unresolved "+what+" reference "+label).Emit()
}
