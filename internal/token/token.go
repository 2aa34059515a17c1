package token

import (
	"strconv"
	"strings"

	"netxlate/internal/source"
)

// Token is one tagged word of a netlist line. A token carries more than one
// kind when the tokenizer cannot decide its role on its own, for example a
// bare identifier after a resistor's nodes may name a model or a parameter.
type Token struct {
	Kinds []Kind
	Value string
	Span  source.Span
}

// Is reports whether the token carries kind k.
func (t Token) Is(k Kind) bool {
	for _, kk := range t.Kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// Kind returns the single kind of an unambiguous token, Invalid otherwise.
func (t Token) Kind() Kind {
	if len(t.Kinds) != 1 {
		return Invalid
	}
	return t.Kinds[0]
}

// Ambiguous reports whether the tokenizer left more than one candidate role.
func (t Token) Ambiguous() bool { return len(t.Kinds) > 1 }

func (t Token) String() string {
	parts := make([]string, len(t.Kinds))
	for i, k := range t.Kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, "|") + "(" + t.Value + ")"
}

// Severity of a tokenizer complaint about a line. Critical and error lines
// are not translated; warn and info lines are.
type Severity uint8

const (
	SevNone Severity = iota
	SevInfo
	SevWarn
	SevError
	SevCritical
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarn:
		return "warn"
	case SevError:
		return "error"
	case SevCritical:
		return "critical"
	default:
		return ""
	}
}

// Line is the token list of one logical netlist line.
type Line struct {
	File   source.FileID
	Path   string
	Span   source.Span
	Lines  []uint32 // 1-based physical lines joined into this logical line
	Raw    string
	Tokens []Token

	Severity Severity
	Message  string
}

// Tokenizer produces token lines for one file at a time.
// Open returns false when the file cannot be read.
type Tokenizer interface {
	Open(path string, top bool) bool
	Next() (Line, bool)
}

// New builds a single-kind token.
func New(k Kind, value string, sp source.Span) Token {
	return Token{Kinds: []Kind{k}, Value: value, Span: sp}
}

// Count parses a non-negative count such as the degree of POLY(n).
// ok is false for anything that is not a decimal integer in range.
func Count(s string) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
