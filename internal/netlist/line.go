// Package netlist holds the dialect-neutral record of one normalized netlist
// line. Normalizers fill it from tokens; the mapping factory consumes it.
package netlist

import (
	"strings"

	"netxlate/internal/ordered"
	"netxlate/internal/source"
	"netxlate/internal/token"
)

// Line types that are not device letters or directive names.
const (
	TypeComment = "COMMENT"
	TypeTitle   = "TITLE"
	TypeData    = "DATA"
)

// Flags mark lines the reader has to revisit after the file is read.
type Flags uint8

const (
	// FlagTop lines are resolved only after every file has been read.
	FlagTop Flags = 1 << iota
	// FlagUnresolvedDevice lines name a model that was not seen yet.
	FlagUnresolvedDevice
	// FlagControlDevice lines reference other devices by name.
	FlagControlDevice
)

// InitialCondition is one V(node)=value or I(dev)=value entry of .IC/.NODESET.
type InitialCondition struct {
	Kind  string // V or I
	Node  string
	Value string
}

// Line is one normalized statement before it is built into a typed
// statement. Type holds the canonical type ("R", ".TRAN", "COMMENT"),
// LocalType the spelling seen in the input dialect.
type Line struct {
	Type      string
	LocalType string
	Name      string

	File  source.FileID
	Path  string
	Span  source.Span
	Lines []uint32
	Raw   string

	Params  *ordered.Map[string, string]
	Known   *ordered.Map[token.Kind, string]
	Lazy    *ordered.Map[string, []token.Kind]
	Lists   map[token.Kind][]string
	ICs     []InitialCondition

	Comment       string
	InlineComment string

	// UnknownNodes keeps positional words of a line that could not be
	// classified before the model or subcircuit it names is known.
	UnknownNodes []string
	// MParam is the parallel multiplier as written, empty when absent.
	MParam string
	// PreprocessKeyword asks the reader to emit a .PREPROCESS line once.
	PreprocessKeyword string
	// ModelDefScope is the path of an included file whose scope defines
	// the model this line references.
	ModelDefScope string

	Flags Flags

	Severity token.Severity
	Message  string
}

// New allocates an empty line bound to a source position.
func New(path string, file source.FileID, span source.Span, lines []uint32) *Line {
	return &Line{
		Path:    path,
		File:    file,
		Span:    span,
		Lines:   append([]uint32(nil), lines...),
		Params:  ordered.New[string, string](4),
		Known:   ordered.New[token.Kind, string](4),
		Lazy:    ordered.New[string, []token.Kind](0),
		Lists:   make(map[token.Kind][]string),
	}
}

// Derive creates a synthesized line sharing the position of l.
func (l *Line) Derive(typ string) *Line {
	out := New(l.Path, l.File, l.Span, l.Lines)
	out.Type = typ
	out.LocalType = typ
	return out
}

func (l *Line) Has(f Flags) bool { return l.Flags&f != 0 }

func (l *Line) Set(f Flags) { l.Flags |= f }

func (l *Line) Clear(f Flags) { l.Flags &^= f }

// IsDirective reports whether the line is a dot command.
func (l *Line) IsDirective() bool { return strings.HasPrefix(l.Type, ".") }

// IsDevice reports whether the line is a device instance.
func (l *Line) IsDevice() bool {
	return l.Type != "" && !l.IsDirective() && l.Type != TypeComment && l.Type != TypeTitle && l.Type != TypeData
}

// Append adds values to the list slot k.
func (l *Line) Append(k token.Kind, vals ...string) {
	l.Lists[k] = append(l.Lists[k], vals...)
}

// List returns the list slot k.
func (l *Line) List(k token.Kind) []string { return l.Lists[k] }

// KnownValue returns the known object for k, or "".
func (l *Line) KnownValue(k token.Kind) string { return l.Known.Value(k) }

// AddLazy records that name could play any of kinds.
func (l *Line) AddLazy(name string, kinds ...token.Kind) {
	cur, _ := l.Lazy.Get(name)
	for _, k := range kinds {
		dup := false
		for _, c := range cur {
			if c == k {
				dup = true
				break
			}
		}
		if !dup {
			cur = append(cur, k)
		}
	}
	l.Lazy.Set(name, cur)
}

// LazyKinds returns the candidate kinds recorded for name.
func (l *Line) LazyKinds(name string) []token.Kind {
	k, _ := l.Lazy.Get(name)
	return k
}

// FirstLine returns the first physical line number, 0 for synthesized lines.
func (l *Line) FirstLine() uint32 {
	if len(l.Lines) == 0 {
		return 0
	}
	return l.Lines[0]
}
