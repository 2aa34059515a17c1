package scope

import (
	"fmt"

	"fortio.org/safecast"

	"netxlate/internal/stmt"
)

// Scope is one node of the scope tree: the top-level netlist, a subcircuit
// definition or a library section.
type Scope struct {
	ID       ScopeID
	Parent   ScopeID
	Children []ScopeID

	// Owner is the .SUBCKT or .LIB command that opened the scope.
	Owner     stmt.UID
	OwnerKind OwnerKind

	names map[Key]stmt.UID
	// all lists every statement of the scope in the order it was added,
	// including unnamed ones and statements merged from library sections.
	all  []stmt.UID
	seen map[stmt.UID]struct{}

	// libSections are sections selected by .LIB lines read inside this scope.
	libSections []string
}

func (s *Scope) IsRoot() bool { return !s.Parent.IsValid() }

// Statements returns the statements of the scope in insertion order.
func (s *Scope) Statements() []stmt.UID {
	out := make([]stmt.UID, len(s.all))
	copy(out, s.all)
	return out
}

// LibSections returns the library sections this scope selected.
func (s *Scope) LibSections() []string { return append([]string(nil), s.libSections...) }

// AddLibSection records a section selected from inside this scope.
func (s *Scope) AddLibSection(name string) { s.libSections = append(s.libSections, name) }

func (s *Scope) record(uid stmt.UID) {
	if _, ok := s.seen[uid]; ok {
		return
	}
	s.seen[uid] = struct{}{}
	s.all = append(s.all, uid)
}

// scopes stores all allocated scopes in a compact slice-based arena.
type scopes struct {
	data []Scope
}

func newScopes(capacity uint32) *scopes {
	if capacity == 0 {
		capacity = 16
	}
	return &scopes{data: make([]Scope, 1, capacity+1)} // index 0 reserved for NoScopeID
}

func (a *scopes) new(parent ScopeID, owner stmt.UID, kind OwnerKind) ScopeID {
	value, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	a.data = append(a.data, Scope{
		ID:        id,
		Parent:    parent,
		Owner:     owner,
		OwnerKind: kind,
		names:     make(map[Key]stmt.UID),
		seen:      make(map[stmt.UID]struct{}),
	})
	if p := a.get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

func (a *scopes) get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

func (a *scopes) len() int { return len(a.data) - 1 }

// statements is the uid arena. A slot is nil after its statement was
// removed (only lazy statements are ever removed).
type statements struct {
	data  []stmt.Statement
	owner []ScopeID
}

func newStatements(capacity uint32) *statements {
	if capacity == 0 {
		capacity = 256
	}
	return &statements{
		data:  make([]stmt.Statement, 1, capacity+1), // index 0 reserved for NoUID
		owner: make([]ScopeID, 1, capacity+1),
	}
}

func (a *statements) new(st stmt.Statement, owner ScopeID) stmt.UID {
	value, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("statements arena overflow: %w", err))
	}
	uid := stmt.UID(value)
	a.data = append(a.data, st)
	a.owner = append(a.owner, owner)
	st.Common().UID = uid
	return uid
}

func (a *statements) get(uid stmt.UID) stmt.Statement {
	if !uid.IsValid() || int(uid) >= len(a.data) {
		return nil
	}
	return a.data[uid]
}

func (a *statements) scopeOf(uid stmt.UID) ScopeID {
	if !uid.IsValid() || int(uid) >= len(a.owner) {
		return NoScopeID
	}
	return a.owner[uid]
}

func (a *statements) drop(uid stmt.UID) {
	if uid.IsValid() && int(uid) < len(a.data) {
		a.data[uid] = nil
	}
}
