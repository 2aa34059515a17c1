// Package expr splits netlist expressions into lexical components. It is a
// scanner, not an evaluator: callers use it to find function calls, bare
// numbers and unary signs inside parameter values.
package expr

import (
	"strings"
)

// Kind classifies one expression component.
type Kind uint8

const (
	Number Kind = iota + 1
	UnaryNeg
	UnaryPos
	Ident
	FuncName
	BuiltinFunc
	FuncBegin
	FuncEnd
	FuncArg
	Operator
	Ternary
	Brace
)

var kindNames = [...]string{
	Number:      "NUMBER",
	UnaryNeg:    "UNARY_NEG",
	UnaryPos:    "UNARY_POS",
	Ident:       "IDENT",
	FuncName:    "FUNC_NAME",
	BuiltinFunc: "BUILTIN_FUNC",
	FuncBegin:   "FUNC_BEGIN",
	FuncEnd:     "FUNC_END",
	FuncArg:     "FUNC_ARG",
	Operator:    "OPERATOR",
	Ternary:     "TERNARY",
	Brace:       "BRACE",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "INVALID"
}

// Component is one piece of an expression. Start and End are byte offsets
// into the text passed to FindComponents.
type Component struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

// builtins are functions every supported dialect understands natively.
var builtins = map[string]struct{}{
	"ABS": {}, "ACOS": {}, "ACOSH": {}, "ASIN": {}, "ASINH": {}, "ATAN": {}, "ATAN2": {},
	"ATANH": {}, "COS": {}, "COSH": {}, "DDT": {}, "DDX": {}, "EXP": {}, "IF": {},
	"INT": {}, "LIMIT": {}, "LOG": {}, "LOG10": {}, "MAX": {}, "MIN": {}, "PWR": {},
	"PWRS": {}, "SDT": {}, "SGN": {}, "SIGN": {}, "SIN": {}, "SINH": {}, "SQRT": {},
	"STP": {}, "TAN": {}, "TANH": {}, "TABLE": {}, "V": {}, "I": {}, "AGAUSS": {},
	"GAUSS": {}, "UNIF": {}, "AUNIF": {}, "POW": {}, "FLOOR": {}, "CEIL": {},
}

// IsBuiltin reports whether name is a built-in function name.
func IsBuiltin(name string) bool {
	_, ok := builtins[strings.ToUpper(name)]
	return ok
}

// FindComponents scans text and returns its components in source order.
// Calls are reported as name, FuncBegin, one FuncArg per top-level argument
// and FuncEnd; components nested inside the arguments follow the FuncEnd of
// their enclosing call. When wanted is non-empty only those kinds are kept.
// Malformed input never fails: unknown bytes become Operator components.
func FindComponents(text string, wanted ...Kind) []Component {
	var out []Component
	scan(text, 0, &out)
	if len(wanted) == 0 {
		return out
	}
	keep := out[:0]
	for _, c := range out {
		for _, w := range wanted {
			if c.Kind == w {
				keep = append(keep, c)
				break
			}
		}
	}
	return keep
}

func scan(text string, base int, out *[]Component) {
	i := 0
	// unary context: at start, after operator, open bracket, comma or ternary
	unary := true
	for i < len(text) {
		ch := text[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\'' || ch == '\n':
			i++
		case isDigit(ch) || (ch == '.' && i+1 < len(text) && isDigit(text[i+1])):
			j := scanNumber(text, i)
			*out = append(*out, Component{Kind: Number, Text: text[i:j], Start: base + i, End: base + j})
			i = j
			unary = false
		case isIdentStart(ch):
			j := i + 1
			for j < len(text) && isIdentPart(text[j]) {
				j++
			}
			name := text[i:j]
			k := j
			for k < len(text) && text[k] == ' ' {
				k++
			}
			if k < len(text) && text[k] == '(' {
				i = scanCall(text, base, i, j, k, name, out)
			} else {
				*out = append(*out, Component{Kind: Ident, Text: name, Start: base + i, End: base + j})
				i = j
			}
			unary = false
		case (ch == '-' || ch == '+') && unary:
			kind := UnaryNeg
			if ch == '+' {
				kind = UnaryPos
			}
			*out = append(*out, Component{Kind: kind, Text: text[i : i+1], Start: base + i, End: base + i + 1})
			i++
		case ch == '?' || ch == ':':
			*out = append(*out, Component{Kind: Ternary, Text: text[i : i+1], Start: base + i, End: base + i + 1})
			i++
			unary = true
		case ch == '(' || ch == '{' || ch == '[':
			*out = append(*out, Component{Kind: Brace, Text: text[i : i+1], Start: base + i, End: base + i + 1})
			i++
			unary = true
		case ch == ')' || ch == '}' || ch == ']':
			*out = append(*out, Component{Kind: Brace, Text: text[i : i+1], Start: base + i, End: base + i + 1})
			i++
			unary = false
		default:
			j := scanOperator(text, i)
			*out = append(*out, Component{Kind: Operator, Text: text[i:j], Start: base + i, End: base + j})
			i = j
			unary = true
		}
	}
}

// scanCall emits a call starting at name [i,j) with '(' at k and returns
// the offset after the closing parenthesis.
func scanCall(text string, base, i, j, k int, name string, out *[]Component) int {
	kind := FuncName
	if IsBuiltin(name) {
		kind = BuiltinFunc
	}
	*out = append(*out,
		Component{Kind: kind, Text: name, Start: base + i, End: base + j},
		Component{Kind: FuncBegin, Text: "(", Start: base + k, End: base + k + 1},
	)
	type span struct{ s, e int }
	var args []span
	depth := 0
	argStart := k + 1
	end := len(text)
	closed := false
	for p := k + 1; p < len(text); p++ {
		switch text[p] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			if depth == 0 {
				args = append(args, span{argStart, p})
				end = p
				closed = true
			} else {
				depth--
			}
		case ',':
			if depth == 0 {
				args = append(args, span{argStart, p})
				argStart = p + 1
			}
		}
		if closed {
			break
		}
	}
	if !closed {
		args = append(args, span{argStart, len(text)})
	}
	for _, a := range args {
		s, e := trimSpan(text, a.s, a.e)
		if s == e {
			continue
		}
		*out = append(*out, Component{Kind: FuncArg, Text: text[s:e], Start: base + s, End: base + e})
	}
	next := end
	if closed {
		*out = append(*out, Component{Kind: FuncEnd, Text: ")", Start: base + end, End: base + end + 1})
		next = end + 1
	}
	for _, a := range args {
		s, e := trimSpan(text, a.s, a.e)
		scan(text[s:e], base+s, out)
	}
	return next
}

func trimSpan(text string, s, e int) (int, int) {
	for s < e && (text[s] == ' ' || text[s] == '\t') {
		s++
	}
	for e > s && (text[e-1] == ' ' || text[e-1] == '\t') {
		e--
	}
	return s, e
}

func scanNumber(text string, i int) int {
	j := i
	for j < len(text) && (isDigit(text[j]) || text[j] == '.') {
		j++
	}
	if j < len(text) && (text[j] == 'e' || text[j] == 'E') {
		k := j + 1
		if k < len(text) && (text[k] == '+' || text[k] == '-') {
			k++
		}
		if k < len(text) && isDigit(text[k]) {
			j = k
			for j < len(text) && isDigit(text[j]) {
				j++
			}
		}
	}
	// unit suffix and trailing unit letters: 10meg, 1.5uF, 2k
	for j < len(text) && isLetter(text[j]) {
		j++
	}
	return j
}

func scanOperator(text string, i int) int {
	if i+1 < len(text) {
		switch text[i : i+2] {
		case "**", "==", "!=", "<=", ">=", "&&", "||":
			return i + 2
		}
	}
	return i + 1
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
func isLetter(ch byte) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isIdentStart(ch byte) bool { return isLetter(ch) || ch == '_' }
func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) || ch == '.' || ch == '!' || ch == '#' }
