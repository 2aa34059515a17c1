package lexer

import "strings"

// word is one whitespace separated unit of a logical line. Bracketed and
// quoted groups stay inside the word that opened them.
type word struct {
	text string
	eq   bool // the word is a bare '='
}

// splitWords breaks a statement into words. Top-level commas separate words,
// '=' is its own word, and (), {}, [], '' and "" groups are kept whole.
func splitWords(s string) []word {
	var (
		out   []word
		cur   strings.Builder
		depth int
		quote byte
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, word{text: cur.String()})
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			cur.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
			cur.WriteByte(ch)
		case '(', '{', '[':
			depth++
			cur.WriteByte(ch)
		case ')', '}', ']':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(ch)
		case ' ', '\t':
			if depth > 0 {
				cur.WriteByte(ch)
				continue
			}
			flush()
		case ',':
			if depth > 0 {
				cur.WriteByte(ch)
				continue
			}
			flush()
		case '=':
			if depth > 0 {
				cur.WriteByte(ch)
				continue
			}
			// comparison operators stay inside expressions
			if i+1 < len(s) && s[i+1] == '=' {
				cur.WriteString("==")
				i++
				continue
			}
			flush()
			out = append(out, word{text: "=", eq: true})
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return out
}

// item is either a positional word or a name=value pair.
type item struct {
	name  string
	value string
	pair  bool
}

// pairUp folds "name = value" word triples into pairs.
func pairUp(words []word) []item {
	var out []item
	for i := 0; i < len(words); i++ {
		w := words[i]
		if w.eq {
			// stray '=' without a name
			continue
		}
		if i+1 < len(words) && words[i+1].eq {
			val := ""
			if i+2 < len(words) && !words[i+2].eq {
				val = words[i+2].text
				i += 2
			} else {
				i++
			}
			out = append(out, item{name: w.text, value: val, pair: true})
			continue
		}
		out = append(out, item{value: w.text})
	}
	return out
}

// stripInlineComment splits text at the first comment marker that is outside
// quotes and brackets.
func stripInlineComment(text string, marker byte) (string, string) {
	if marker == 0 {
		return text, ""
	}
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			if depth > 0 {
				depth--
			}
		case marker:
			if depth == 0 && (i == 0 || text[i-1] == ' ' || text[i-1] == '\t' || marker == ';') {
				return strings.TrimRight(text[:i], " \t"), strings.TrimSpace(text[i+1:])
			}
		}
	}
	return text, ""
}

// unwrapParens returns the inside of a word fully enclosed in parentheses.
func unwrapParens(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// callParts splits "NAME(args)" into NAME and the argument text.
func callParts(s string) (string, string, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}
