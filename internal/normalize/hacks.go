package normalize

import (
	"regexp"
	"strings"

	"netxlate/internal/expr"
)

// WrapExpression puts braces around anything that is not a plain number.
// Single quotes used as expression delimiters are dropped first.
func WrapExpression(in string) string {
	s := strings.TrimSpace(in)
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}
	if strings.HasPrefix(s, `"`) {
		return s
	}
	s = strings.ReplaceAll(s, "'", "")
	if expr.IsPlainNumber(s) {
		return s
	}
	return "{" + s + "}"
}

// ExponentSymbol rewrites '^' as '**'.
func ExponentSymbol(in string) string {
	return strings.ReplaceAll(in, "^", "**")
}

// SpaceTernary makes sure '?' and ':' of a ternary operator are surrounded by
// spaces. The second result is false when the operator is unbalanced; the
// text is then returned unchanged.
func SpaceTernary(in string) (string, bool) {
	q := strings.Count(in, "?")
	c := strings.Count(in, ":")
	if q == 0 && c == 0 {
		return in, true
	}
	if q != c {
		return in, false
	}
	var b strings.Builder
	for i := 0; i < len(in); i++ {
		ch := in[i]
		if ch != '?' && ch != ':' {
			b.WriteByte(ch)
			continue
		}
		if i > 0 && in[i-1] != ' ' {
			b.WriteByte(' ')
		}
		b.WriteByte(ch)
		if i+1 < len(in) && in[i+1] != ' ' {
			b.WriteByte(' ')
		}
	}
	return b.String(), true
}

var siSuffix = regexp.MustCompile(`(?i)\b(\d+(?:\.\d*)?|\.\d+)(a|x)\b`)

// SIPrefix converts unit suffixes unknown to the output dialect: 'a' (atto)
// becomes e-18 and 'x' (mega) becomes meg.
func SIPrefix(in string) string {
	return siSuffix.ReplaceAllStringFunc(in, func(m string) string {
		num, suf := m[:len(m)-1], m[len(m)-1]
		if suf == 'a' || suf == 'A' {
			return num + "e-18"
		}
		return num + "meg"
	})
}

// node names may not contain these characters
var abmExpression = regexp.MustCompile(`(?i)^V\([^(),."'?=]+(,[^(),."'?=]+)?\)`)

// DetectABM reports whether expression depends on a node voltage.
func DetectABM(in string) bool {
	parts := splitOperands(in)
	for _, p := range parts {
		if abmExpression.MatchString(p) {
			return true
		}
	}
	return false
}

func splitOperands(in string) []string {
	return strings.FieldsFunc(strings.Trim(in, "{}"), func(r rune) bool {
		switch r {
		case '*', '/', '+', '-', ' ', '\'':
			return true
		}
		return false
	})
}

// DetectTemper reports whether expression uses the TEMPER variable.
func DetectTemper(in string) bool {
	for _, id := range expr.Idents(strings.Trim(in, "{}'")) {
		if strings.EqualFold(id, "TEMPER") {
			return true
		}
	}
	return false
}

var temperWord = regexp.MustCompile(`(?i)\bTEMPER\b`)

// ReplaceTemper renames TEMPER to the synthesized global parameter.
func ReplaceTemper(in string) string {
	return temperWord.ReplaceAllString(in, TemperParam)
}

// CleanOutputVariable normalizes one .PRINT variable: brackets around node
// names are dropped, par('x') becomes {x} and spaces inside calls go away.
func CleanOutputVariable(in string) string {
	s := strings.TrimSpace(in)
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "PAR(") && strings.HasSuffix(s, ")") {
		inner := strings.Trim(s[4:len(s)-1], "'\" ")
		return "{" + inner + "}"
	}
	if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") && len(s) > 1 {
		return "{" + s[1:len(s)-1] + "}"
	}
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		args := strings.NewReplacer("[", "", "]", "", " ", "").Replace(s[open+1 : len(s)-1])
		return s[:open] + "(" + args + ")"
	}
	return s
}
