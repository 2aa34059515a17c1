package lexer

import (
	"strings"

	"netxlate/internal/source"
	"netxlate/internal/token"
)

// Tokenizer is the built-in SPICE-family tokenizer. It reads a file through
// a FileSet, joins continuation lines and tags every word with its role.
type Tokenizer struct {
	fs    *source.FileSet
	opts  Options
	file  *source.File
	lines []source.LogicalLine
	pos   int
	top   bool
	err   error
}

var _ token.Tokenizer = (*Tokenizer)(nil)

func New(fs *source.FileSet, opts Options) *Tokenizer {
	return &Tokenizer{fs: fs, opts: opts}
}

// Options returns the active dialect options.
func (tz *Tokenizer) Options() Options { return tz.opts }

// SetOptions switches the dialect for the rest of the current file.
func (tz *Tokenizer) SetOptions(opts Options) { tz.opts = opts }

// Open loads path (or reuses a file already added to the FileSet) and
// prepares its logical lines.
func (tz *Tokenizer) Open(path string, top bool) bool {
	tz.err = nil
	if f, ok := tz.fs.GetByPath(path); ok {
		tz.OpenFile(f.ID, top)
		return true
	}
	var flags source.FileFlags
	if !top {
		flags = source.FileIncluded
	}
	id, err := tz.fs.Load(path, flags)
	if err != nil {
		tz.err = err
		tz.file, tz.lines, tz.pos = nil, nil, 0
		return false
	}
	tz.OpenFile(id, top)
	return true
}

// OpenFile prepares an already loaded file.
func (tz *Tokenizer) OpenFile(id source.FileID, top bool) {
	tz.file = tz.fs.Get(id)
	tz.lines = tz.fs.LogicalLines(id)
	tz.pos = 0
	tz.top = top
}

// Err returns the error of the last failed Open.
func (tz *Tokenizer) Err() error { return tz.err }

// File returns the open file or nil.
func (tz *Tokenizer) File() *source.File { return tz.file }

// Next returns the next logical line. The second result is false at the end
// of the file.
func (tz *Tokenizer) Next() (token.Line, bool) {
	if tz.file == nil || tz.pos >= len(tz.lines) {
		return token.Line{}, false
	}
	ll := tz.lines[tz.pos]
	first := tz.pos == 0
	tz.pos++

	out := token.Line{
		File:  tz.file.ID,
		Path:  tz.file.Path,
		Span:  ll.Span,
		Lines: ll.Lines,
		Raw:   ll.Text,
	}
	if first && tz.top && tz.opts.Title && ll.First() == 1 {
		out.Tokens = []token.Token{token.New(token.Title, strings.TrimSpace(ll.Text), ll.Span)}
		return out, true
	}
	out.Tokens, out.Severity, out.Message = Tokenize(tz.opts, ll.Text, ll.Span)
	return out, true
}

// Tokenize tags the words of one logical line.
func Tokenize(opts Options, text string, sp source.Span) ([]token.Token, token.Severity, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, token.SevNone, ""
	}
	if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "//") {
		return []token.Token{token.New(token.Comment, trimmed, sp)}, token.SevNone, ""
	}

	body, inline := stripInlineComment(trimmed, opts.InlineComment)
	e := &emitter{span: sp, opts: opts}
	words := splitWords(body)
	if len(words) > 0 {
		head := words[0].text
		switch {
		case strings.HasPrefix(head, "."):
			e.directive(strings.ToUpper(head), words[1:])
		case strings.EqualFold(head, "simulator"):
			e.emit(token.DirectiveName, "SIMULATOR")
			e.params(pairUp(words[1:]))
		default:
			e.device(head, words[1:])
		}
	}
	if inline != "" {
		e.emit(token.InlineComment, inline)
	}
	return e.toks, e.sev, e.msg
}

type emitter struct {
	span source.Span
	opts Options
	toks []token.Token
	sev  token.Severity
	msg  string
}

func (e *emitter) emit(k token.Kind, v string) {
	e.toks = append(e.toks, token.New(k, v, e.span))
}

func (e *emitter) emitAmbiguous(v string, kinds ...token.Kind) {
	e.toks = append(e.toks, token.Token{Kinds: kinds, Value: v, Span: e.span})
}

func (e *emitter) complain(sev token.Severity, msg string) {
	if sev > e.sev {
		e.sev, e.msg = sev, msg
	}
}

// params emits name=value pairs and standalone words.
func (e *emitter) params(items []item) {
	for _, it := range items {
		if it.pair {
			e.emit(token.ParamName, it.name)
			e.emit(token.ParamValue, it.value)
			continue
		}
		if strings.EqualFold(it.value, "PARAMS:") {
			e.emit(token.ParamsHeader, it.value)
			continue
		}
		e.emit(token.StandaloneParam, it.value)
	}
}

// splitPositional separates leading positional words from the pairs that
// follow them. Positional words after the first pair are returned in tail.
func splitPositional(items []item) (pos []string, rest []item) {
	i := 0
	for ; i < len(items) && !items[i].pair; i++ {
		if strings.EqualFold(items[i].value, "PARAMS:") {
			break
		}
		pos = append(pos, items[i].value)
	}
	return pos, items[i:]
}

// isValueWord reports whether w reads as a literal or an expression rather
// than a name.
func isValueWord(w string) bool {
	if w == "" {
		return false
	}
	switch w[0] {
	case '{', '\'', '"', '(':
		return true
	case '-', '+', '.':
		return true
	}
	return w[0] >= '0' && w[0] <= '9'
}
