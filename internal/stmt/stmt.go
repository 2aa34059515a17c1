// Package stmt defines the typed statement model produced by the mapping
// factory: devices, model definitions, commands, administrative rows,
// electrical nodes and lazy placeholders for forward references.
//
// Statements live in the arena owned by scope.Session and are addressed by
// UID. Props hold typed values keyed by semantic role; params keep the
// free-form NAME=value pairs in authored order.
package stmt

import (
	"netxlate/internal/ordered"
	"netxlate/internal/source"
	"netxlate/internal/token"
)

// UID identifies a statement inside one translation session.
type UID uint32

// NoUID marks a statement that was not registered yet.
const NoUID UID = 0

// IsValid reports whether the UID refers to a registered statement.
func (u UID) IsValid() bool { return u != NoUID }

// Kind enumerates the statement variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindDevice
	KindModelDef
	KindMasterModel
	KindCommand
	KindRef
	KindLazy
	KindENode
)

func (k Kind) String() string {
	switch k {
	case KindDevice:
		return "device"
	case KindModelDef:
		return "model definition"
	case KindMasterModel:
		return "model"
	case KindCommand:
		return "command"
	case KindRef:
		return "ref"
	case KindLazy:
		return "lazy statement"
	case KindENode:
		return "node"
	default:
		return "invalid"
	}
}

// Statement is implemented by every variant. The set is closed: Device,
// ModelDef, MasterModel, Command, Ref, Lazy and ENode.
type Statement interface {
	Kind() Kind
	Common() *Base
}

// Named statements take part in scope name tables. Ref is the only variant
// without a name; it is keyed by UID.
type Named interface {
	Statement
	Name() string
}

// Binder is implemented by statements that listen to lazy placeholders.
type Binder interface {
	Statement
	// Bind receives the definition that resolved the placeholder called
	// name. It returns false when the definition is not one of the
	// candidate kinds recorded for that name.
	Bind(name string, def Statement) bool
}

// Base carries the attributes shared by all statements.
type Base struct {
	UID   UID
	Path  string
	Span  source.Span // covers the logical line, File included
	Lines []uint32

	Props  *ordered.Map[token.Kind, Value]
	Params *ordered.Map[string, string]

	InlineComment string

	// Slots lists forward references this statement waits for, keyed by
	// the referenced name.
	Slots *ordered.Map[string, []Candidate]
}

// NewBase returns a base positioned at path and lines.
func NewBase(path string, span source.Span, lines []uint32) Base {
	return Base{
		Path:   path,
		Span:   span,
		Lines:  append([]uint32(nil), lines...),
		Props:  ordered.New[token.Kind, Value](4),
		Params: ordered.New[string, string](4),
		Slots:  ordered.New[string, []Candidate](0),
	}
}

func (b *Base) Common() *Base { return b }

// Prop returns the prop for role k, or nil.
func (b *Base) Prop(k token.Kind) Value {
	if b.Props == nil {
		return nil
	}
	return b.Props.Value(k)
}

// PropText renders the prop for role k, "" when absent.
func (b *Base) PropText(k token.Kind) string {
	v := b.Prop(k)
	if v == nil {
		return ""
	}
	return v.SpiceString()
}

func (b *Base) SetProp(k token.Kind, v Value) {
	if b.Props == nil {
		b.Props = ordered.New[token.Kind, Value](4)
	}
	b.Props.Set(k, v)
}

func (b *Base) SetParam(name, value string) {
	if b.Params == nil {
		b.Params = ordered.New[string, string](4)
	}
	b.Params.Set(name, value)
}

// FirstLine returns the first source line, 0 for synthesized statements.
func (b *Base) FirstLine() uint32 {
	if len(b.Lines) == 0 {
		return 0
	}
	return b.Lines[0]
}

// Candidate is one concrete thing a forward reference may turn out to be.
// A non-empty Param means the name may also be a literal value for that
// parameter; such slots accept any definition.
type Candidate struct {
	Kind  Kind
	Param string
}

// SetLazy records that name is waiting for one of cands.
func (b *Base) SetLazy(name string, cands []Candidate) {
	if b.Slots == nil {
		b.Slots = ordered.New[string, []Candidate](1)
	}
	b.Slots.Set(name, append([]Candidate(nil), cands...))
}

// IsValidBind reports whether def satisfies the slot recorded for name.
func (b *Base) IsValidBind(name string, def Statement) bool {
	cands, ok := b.Slots.Get(name)
	if !ok {
		return false
	}
	for _, c := range cands {
		if c.Param != "" || c.Kind == def.Kind() {
			return true
		}
	}
	return false
}

// Pending reports whether any forward reference is still unresolved.
func (b *Base) Pending() bool { return b.Slots.Len() > 0 }

// Ident is embedded by statements that have a name.
type Ident struct {
	Ident string
}

func (i *Ident) Name() string { return i.Ident }
