// Package scope implements the hierarchical name table of one translation:
// an arena of scopes (top level, subcircuit definitions, library sections)
// plus the session-wide indexes shared by every scope.
//
// Lookups walk the parent chain and never descend. Forward references are
// represented by stmt.Lazy placeholders; when the real definition arrives in
// a scope that can see the placeholder, every listener is bound and the
// placeholder is removed.
package scope

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"netxlate/internal/diag"
	"netxlate/internal/ordered"
	"netxlate/internal/stmt"
)

// Options tune name handling for the output dialect.
type Options struct {
	// CaseInsensitive folds every name key to upper case.
	CaseInsensitive bool
}

// Session owns the scope tree, the statement arena and the shared
// indexes (lazy statements, source lines, commands).
type Session struct {
	opts    Options
	rep     diag.Reporter
	upper   cases.Caser
	scopes  *scopes
	stmts   *statements
	current ScopeID

	// lazies keeps live placeholders in creation order.
	lazies *ordered.Map[stmt.UID, ScopeID]
	// lines groups statements by source path.
	lines map[string][]stmt.UID
	// commands groups commands by name, "" for unnamed ones.
	commands map[string][]stmt.UID
}

// NewSession creates a session with an empty root scope.
func NewSession(opts Options, rep diag.Reporter) *Session {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	s := &Session{
		opts:     opts,
		rep:      rep,
		upper:    cases.Upper(language.Und),
		scopes:   newScopes(0),
		stmts:    newStatements(0),
		lazies:   ordered.New[stmt.UID, ScopeID](8),
		lines:    make(map[string][]stmt.UID),
		commands: make(map[string][]stmt.UID),
	}
	s.current = s.scopes.new(NoScopeID, stmt.NoUID, OwnerRoot)
	return s
}

func (s *Session) Options() Options { return s.opts }

// Reporter returns the diagnostic sink of the session.
func (s *Session) Reporter() diag.Reporter { return s.rep }

// Root returns the top-level scope.
func (s *Session) Root() ScopeID { return RootScopeID }

// Current returns the scope statements are added to.
func (s *Session) Current() ScopeID { return s.current }

// SetCurrent moves the insertion point, used when an included file is
// read into a recorded scope.
func (s *Session) SetCurrent(id ScopeID) {
	if s.scopes.get(id) != nil {
		s.current = id
	}
}

// Scope returns the scope for id or nil. The pointer is only valid until
// the next PushScope.
func (s *Session) Scope(id ScopeID) *Scope { return s.scopes.get(id) }

// NumScopes reports the number of allocated scopes.
func (s *Session) NumScopes() int { return s.scopes.len() }

// Stmt returns the statement for uid, nil when unknown or removed.
func (s *Session) Stmt(uid stmt.UID) stmt.Statement { return s.stmts.get(uid) }

// ScopeOf returns the scope a statement was registered in.
func (s *Session) ScopeOf(uid stmt.UID) ScopeID { return s.stmts.scopeOf(uid) }

// Owner returns the command that opened scope id, nil for the root.
func (s *Session) Owner(id ScopeID) *stmt.Command {
	sc := s.scopes.get(id)
	if sc == nil {
		return nil
	}
	c, _ := s.stmts.get(sc.Owner).(*stmt.Command)
	return c
}

// Norm returns the key form of a name.
func (s *Session) Norm(name string) string {
	if s.opts.CaseInsensitive {
		return s.upper.String(name)
	}
	return name
}

func (s *Session) key(tag Tag, name string) Key { return Key{Tag: tag, Name: s.Norm(name)} }

// Register assigns a UID to st in the current scope without entering it
// in a name table. Add registers implicitly; builders call Register first
// when the statement must listen to lazy placeholders before it is added.
func (s *Session) Register(st stmt.Statement) stmt.UID {
	if uid := st.Common().UID; uid.IsValid() {
		return uid
	}
	return s.stmts.new(st, s.current)
}

// PushScope opens a child scope of the current one owned by a .SUBCKT or
// .LIB command and makes it current.
func (s *Session) PushScope(owner *stmt.Command) ScopeID {
	kind := OwnerSubckt
	if owner.Type == ".LIB" {
		kind = OwnerLib
	}
	uid := s.Register(owner)
	s.current = s.scopes.new(s.current, uid, kind)
	return s.current
}

// PopScope returns to the parent scope; the root pops to itself.
func (s *Session) PopScope() ScopeID {
	if sc := s.scopes.get(s.current); sc != nil && sc.Parent.IsValid() {
		s.current = sc.Parent
	}
	return s.current
}

// GetObject looks name up in scope id and then in its ancestors.
func (s *Session) GetObject(id ScopeID, tag Tag, name string) stmt.Statement {
	k := s.key(tag, name)
	for sc := s.scopes.get(id); sc != nil; sc = s.scopes.get(sc.Parent) {
		if uid, ok := sc.names[k]; ok {
			return s.stmts.get(uid)
		}
	}
	return nil
}

// ScopeContains reports whether name is visible from scope id.
func (s *Session) ScopeContains(id ScopeID, tag Tag, name string) bool {
	return s.GetObject(id, tag, name) != nil
}

// LocalScopeContains reports whether name is declared exactly in scope id.
func (s *Session) LocalScopeContains(id ScopeID, tag Tag, name string) bool {
	sc := s.scopes.get(id)
	if sc == nil {
		return false
	}
	_, ok := sc.names[s.key(tag, name)]
	return ok
}

// GetChildScope finds a direct child opened by the subcircuit called name
// or by the library section called name.
func (s *Session) GetChildScope(id ScopeID, name string) ScopeID {
	sc := s.scopes.get(id)
	if sc == nil {
		return NoScopeID
	}
	for _, cid := range sc.Children {
		child := s.scopes.get(cid)
		owner, _ := s.stmts.get(child.Owner).(*stmt.Command)
		if owner == nil {
			continue
		}
		switch child.OwnerKind {
		case OwnerSubckt:
			if s.Norm(owner.Name()) == s.Norm(name) {
				return cid
			}
		case OwnerLib:
			if owner.LibEntry() == name {
				return cid
			}
		}
	}
	return NoScopeID
}

// Add enters st into the current scope.
func (s *Session) Add(st stmt.Statement) error { return s.AddTo(s.current, st) }

// AddTo enters st into scope id. Model definitions go through AddModel.
func (s *Session) AddTo(id ScopeID, st stmt.Statement) error {
	if s.scopes.get(id) == nil {
		return fmt.Errorf("scope %d: %w", id, ErrInvalidType)
	}
	switch v := st.(type) {
	case *stmt.ModelDef:
		_, err := s.addModel(id, v)
		return err
	case *stmt.Device:
		return s.addNamed(id, v, Key{Tag: TagDevice, Name: s.Norm(v.FullName())}, v.Name())
	case *stmt.ENode:
		return s.addNamed(id, v, s.key(TagENode, v.Name()), v.Name())
	case *stmt.Command:
		if v.Type == ".SUBCKT" {
			return s.addNamed(id, v, s.key(TagSubckt, v.Name()), v.Name())
		}
		if v.Name() == "" {
			s.enter(id, v, nil)
			return nil
		}
		// only subcircuit definitions satisfy placeholders
		k := s.key(TagCommand, v.Name())
		s.enter(id, v, &k)
		return nil
	case *stmt.Ref:
		s.enter(id, v, nil)
		return nil
	case *stmt.Lazy:
		k := s.key(TagLazy, v.Name())
		s.enter(id, v, &k)
		s.lazies.Set(v.UID, id)
		return nil
	default:
		return fmt.Errorf("%T cannot be added to a scope: %w", st, ErrInvalidType)
	}
}

// enter registers st in id, indexes it and records it in the scope.
func (s *Session) enter(id ScopeID, st stmt.Statement, k *Key) {
	b := st.Common()
	if !b.UID.IsValid() {
		s.stmts.new(st, id)
	} else if int(b.UID) < len(s.stmts.owner) {
		s.stmts.owner[b.UID] = id
	}
	sc := s.scopes.get(id)
	if k != nil {
		sc.names[*k] = b.UID
	}

	switch st.(type) {
	case *stmt.Lazy:
	case *stmt.ENode, *stmt.MasterModel:
		sc.record(b.UID)
	default:
		sc.record(b.UID)
		s.lines[b.Path] = append(s.lines[b.Path], b.UID)
	}
	if c, ok := st.(*stmt.Command); ok {
		s.commands[c.Name()] = append(s.commands[c.Name()], c.UID)
	}
}

func (s *Session) addNamed(id ScopeID, st stmt.Statement, k Key, name string) error {
	switch k.Tag {
	case TagDevice:
		if s.LocalScopeContains(id, TagDevice, k.Name) {
			return &ConflictError{Name: k.Name, Tag: k.Tag, Scope: id}
		}
	case TagENode, TagSubckt:
		if s.ScopeContains(id, k.Tag, name) {
			if s.scopes.get(id).IsRoot() {
				return &ConflictError{Name: name, Tag: k.Tag, Scope: id}
			}
			diag.ReportWarning(s.rep, diag.ScpNameConflict, st.Common().Span,
				name+" duplicated in a child scope. Continuing.").Emit()
		}
	}
	// a pending placeholder is satisfied only by a statement that is entered
	if lz, ok := s.GetObject(id, TagLazy, name).(*stmt.Lazy); ok {
		s.bindLazy(lz, st)
	}
	s.enter(id, st, &k)
	return nil
}

// AddModel adds a model definition to the current scope and returns the
// MasterModel aggregating it.
func (s *Session) AddModel(m *stmt.ModelDef) (*stmt.MasterModel, error) {
	return s.addModel(s.current, m)
}

func (s *Session) addModel(id ScopeID, m *stmt.ModelDef) (*stmt.MasterModel, error) {
	root, _ := stmt.BinRoot(m.Name())
	k := s.key(TagModel, root)
	sc := s.scopes.get(id)

	master, _ := s.stmts.get(sc.names[k]).(*stmt.MasterModel)
	if master == nil {
		if s.modelConflict(id, root) {
			if sc.IsRoot() {
				return nil, &ConflictError{Name: root, Tag: TagModel, Scope: id}
			}
			diag.ReportWarning(s.rep, diag.ScpNameConflict, m.Span,
				"model "+root+" duplicated in a child scope. Continuing.").Emit()
		}
		master = stmt.NewMasterModel(root)
		s.enter(id, master, &k)
	}
	if !master.Add(m) {
		return nil, fmt.Errorf("model %s does not belong to %s: %w", m.Name(), master.Name(), ErrInvalidType)
	}
	s.enter(id, m, nil)

	for _, name := range []string{root, m.Name()} {
		if lz, ok := s.GetObject(id, TagLazy, name).(*stmt.Lazy); ok {
			s.bindLazy(lz, master)
		}
	}
	return master, nil
}

// modelConflict: library scopes only check their own table, other scopes
// check everything they can see.
func (s *Session) modelConflict(id ScopeID, name string) bool {
	if s.scopes.get(id).OwnerKind == OwnerLib {
		return s.LocalScopeContains(id, TagModel, name)
	}
	return s.ScopeContains(id, TagModel, name)
}

// RetroactiveAddStatement merges the statements of child, and of the
// library sections it selected, into scope into as if they had been read
// there. Names already declared in into are kept.
func (s *Session) RetroactiveAddStatement(into, child ScopeID) {
	s.retroactive(into, child, map[ScopeID]bool{})
}

func (s *Session) retroactive(into, child ScopeID, done map[ScopeID]bool) {
	dst, src := s.scopes.get(into), s.scopes.get(child)
	if dst == nil || src == nil || done[child] || into == child {
		return
	}
	done[child] = true
	for _, uid := range src.all {
		dst.record(uid)
	}
	for k, uid := range src.names {
		if _, ok := dst.names[k]; !ok {
			dst.names[k] = uid
		}
	}
	for _, sect := range src.libSections {
		s.retroactive(into, s.GetChildScope(into, sect), done)
	}
}

// StatementsInFile returns the statements read from path in line order.
func (s *Session) StatementsInFile(path string) []stmt.Statement {
	var out []stmt.Statement
	for _, uid := range s.lines[path] {
		if st := s.stmts.get(uid); st != nil {
			out = append(out, st)
		}
	}
	slices.SortStableFunc(out, func(a, b stmt.Statement) int {
		la, lb := a.Common().FirstLine(), b.Common().FirstLine()
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
	return out
}

// Files returns the source paths seen so far, sorted.
func (s *Session) Files() []string {
	out := make([]string, 0, len(s.lines))
	for p := range s.lines {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Commands returns the commands registered under name in insertion order.
func (s *Session) Commands(name string) []*stmt.Command {
	var out []*stmt.Command
	for _, uid := range s.commands[name] {
		if c, ok := s.stmts.get(uid).(*stmt.Command); ok {
			out = append(out, c)
		}
	}
	return out
}

// CommandsOfType returns every command with the canonical type typ.
func (s *Session) CommandsOfType(typ string) []*stmt.Command {
	var out []*stmt.Command
	for _, uids := range s.commands {
		for _, uid := range uids {
			if c, ok := s.stmts.get(uid).(*stmt.Command); ok && strings.EqualFold(c.Type, typ) {
				out = append(out, c)
			}
		}
	}
	slices.SortFunc(out, func(a, b *stmt.Command) int { return int(a.UID) - int(b.UID) })
	return out
}
