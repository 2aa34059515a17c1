package expr

import "strings"

// IsPlainNumber reports whether text is a number, optionally signed, with
// nothing else around it.
func IsPlainNumber(text string) bool {
	comps := FindComponents(text)
	switch len(comps) {
	case 0:
		return true
	case 1:
		return comps[0].Kind == Number
	case 2:
		return (comps[0].Kind == UnaryNeg || comps[0].Kind == UnaryPos) && comps[1].Kind == Number
	}
	return false
}

// Calls returns the text of every user or built-in call in text, spaces
// removed, in the order the calls start.
func Calls(text string) []Call {
	var (
		calls []Call
		cur   *Call
	)
	for _, c := range FindComponents(text, FuncName, BuiltinFunc, FuncBegin, FuncEnd, FuncArg) {
		switch c.Kind {
		case FuncName, BuiltinFunc:
			calls = append(calls, Call{Name: c.Text, Builtin: c.Kind == BuiltinFunc, Start: c.Start})
			cur = &calls[len(calls)-1]
		case FuncArg:
			if cur != nil {
				cur.Args = append(cur.Args, c.Text)
			}
		case FuncEnd:
			if cur != nil {
				cur.End = c.End
				cur = nil
			}
		}
	}
	return calls
}

// Call is one function call found in an expression.
type Call struct {
	Name    string
	Args    []string
	Builtin bool
	Start   int
	End     int // 0 when the call is not closed
}

// Text renders the call as NAME(arg,arg) without spaces.
func (c Call) Text() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strings.ReplaceAll(a, " ", ""))
	}
	b.WriteByte(')')
	return b.String()
}

// Idents returns identifier components of text, function names excluded.
func Idents(text string) []string {
	var out []string
	for _, c := range FindComponents(text, Ident) {
		out = append(out, c.Text)
	}
	return out
}
