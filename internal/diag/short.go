package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"netxlate/internal/source"
)

// shortLine is one row of the short format.
type shortLine struct {
	sev   string
	code  string
	path  string
	first uint32
	last  uint32
	msg   string
}

func (l shortLine) String() string {
	loc := fmt.Sprintf("%s:%d", l.path, l.first)
	if l.last > l.first {
		loc += fmt.Sprintf("-%d", l.last)
	}
	return strings.Join([]string{l.sev, l.code, loc, l.msg}, " ")
}

var shortSeverity = map[Severity]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

// FormatShortDiagnostics renders one diagnostic per line as
// "severity CODE path:first[-last] message", ordered by path and line.
// A statement continued over several physical lines shows the whole range.
// Diagnostics about no file are left out.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	var rows []shortLine
	add := func(sev string, code Code, sp source.Span, msg string) {
		path, first, last, ok := locate(fs, sp)
		if ok {
			rows = append(rows, shortLine{sev: sev, code: code.ID(), path: path, first: first, last: last, msg: oneLine(msg)})
		}
	}
	for _, d := range diags {
		add(shortSeverity[d.Severity], d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(rows, func(a, b shortLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.first, b.first),
			cmp.Compare(a.sev, b.sev),
			cmp.Compare(a.code, b.code),
			cmp.Compare(a.msg, b.msg),
		)
	})
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// LineRange returns the first and last physical line of span.
func LineRange(fs *source.FileSet, span source.Span) (first, last uint32, ok bool) {
	_, first, last, ok = locate(fs, span)
	return first, last, ok
}

func locate(fs *source.FileSet, sp source.Span) (path string, first, last uint32, ok bool) {
	if int(sp.File) >= fs.Len() {
		return "", 0, 0, false
	}
	start, end := fs.Resolve(sp)
	path = fs.Get(sp.File).FormatPath("relative", fs.BaseDir())
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return path, start.Line, end.Line, true
}

func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
