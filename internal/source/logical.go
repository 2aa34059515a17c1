package source

import (
	"strings"
)

// LogicalLine is one netlist statement after continuation joining.
type LogicalLine struct {
	Span  Span     // covers every physical line that was joined
	Lines []uint32 // 1-based physical line numbers, ascending
	Text  string   // joined text, continuation markers removed
}

// First returns the first physical line number.
func (l LogicalLine) First() uint32 {
	if len(l.Lines) == 0 {
		return 0
	}
	return l.Lines[0]
}

// IsComment reports whether the line is a full-line comment.
func (l LogicalLine) IsComment() bool {
	t := strings.TrimLeft(l.Text, " \t")
	return strings.HasPrefix(t, "*") || strings.HasPrefix(t, "//")
}

// LogicalLines splits a file into logical lines. A physical line whose first
// non-blank character is '+' continues the previous statement. Full-line
// comments met inside a continuation run are emitted right after the statement
// they interrupted. Blank lines are skipped.
func (s *FileSet) LogicalLines(id FileID) []LogicalLine {
	f := s.Get(id)
	n := f.LineCount()
	out := make([]LogicalLine, 0, n)

	var (
		open    *LogicalLine
		text    strings.Builder
		pending []LogicalLine
	)
	flush := func() {
		if open == nil {
			return
		}
		open.Text = text.String()
		out = append(out, *open)
		out = append(out, pending...)
		open, pending = nil, pending[:0]
		text.Reset()
	}

	for ln := uint32(1); ln <= n; ln++ {
		raw := f.GetLine(ln)
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		span := f.LineSpan(ln)
		line := LogicalLine{Span: span, Lines: []uint32{ln}, Text: raw}

		switch {
		case line.IsComment():
			if open != nil {
				pending = append(pending, line)
				continue
			}
			out = append(out, line)
		case trimmed[0] == '+':
			if open == nil {
				// dangling continuation: keep it as its own statement
				line.Text = strings.TrimSpace(trimmed[1:])
				out = append(out, line)
				continue
			}
			open.Span = open.Span.Cover(span)
			open.Lines = append(open.Lines, ln)
			rest := strings.TrimSpace(trimmed[1:])
			if rest != "" {
				text.WriteByte(' ')
				text.WriteString(rest)
			}
		default:
			flush()
			line.Text = ""
			open = &line
			text.WriteString(strings.TrimRight(raw, " \t"))
		}
	}
	flush()
	return out
}
