package scope

// ScopeID identifies a scope in the session arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
	// RootScopeID is the top-level netlist scope, allocated by NewSession.
	RootScopeID ScopeID = 1
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// OwnerKind tells why a scope exists.
type OwnerKind uint8

const (
	OwnerRoot OwnerKind = iota
	OwnerSubckt
	OwnerLib
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerSubckt:
		return "subcircuit"
	case OwnerLib:
		return "library section"
	default:
		return "top"
	}
}

// Tag separates namespaces that share textual names inside one scope.
type Tag uint8

const (
	TagInvalid Tag = iota
	TagDevice
	TagENode
	TagModel
	TagLazy
	TagCommand
	TagSubckt
	TagRef
)

func (t Tag) String() string {
	switch t {
	case TagDevice:
		return "devices"
	case TagENode:
		return "nodes"
	case TagModel:
		return "models"
	case TagLazy:
		return "lazy statements"
	case TagCommand:
		return "commands"
	case TagSubckt:
		return "subcircuit definitions"
	case TagRef:
		return "refs"
	default:
		return "invalid"
	}
}

// Key is a name table entry. Device names carry their type letter so a
// resistor and a capacitor may both be called "1".
type Key struct {
	Tag  Tag
	Name string
}
