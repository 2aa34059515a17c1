package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"netxlate/internal/diag"
	"netxlate/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид. Идёт по
// bag.Items() (ожидается bag.Sort() заранее). Для каждой печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем, с opts.Context, строку исходника с подчёркиванием ^~~~ по Span,
// затем Notes в том же формате.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := printer{w: w, fs: fs, opts: opts}
	for _, d := range bag.Items() {
		p.diagnostic(d)
	}
}

type printer struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *printer) paint(c *color.Color, s string) string {
	if !p.opts.Color {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan, color.Bold)
	noteColor  = color.New(color.FgBlue)
	pathColor  = color.New(color.Bold)
	caretColor = color.New(color.FgGreen, color.Bold)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func (p *printer) diagnostic(d diag.Diagnostic) {
	head := p.paint(severityColor(d.Severity), d.Severity.String()+" "+d.Code.ID())
	fmt.Fprintf(p.w, "%s%s: %s\n", p.location(d.Primary), head, d.Message)
	if p.opts.Context {
		p.context(d.Primary, severityColor(d.Severity))
	}
	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		fmt.Fprintf(p.w, "  %s%s: %s\n", p.location(n.Span), p.paint(noteColor, "note"), n.Msg)
	}
}

// location renders "path:line:col: ", or "" when span has no file.
func (p *printer) location(span source.Span) string {
	f := fileOf(p.fs, span)
	if f == nil {
		return ""
	}
	path := formatPath(f, p.fs, p.opts.PathMode)
	if span.Empty() && span.Start == 0 {
		return p.paint(pathColor, path) + ": "
	}
	start, _ := p.fs.Resolve(span)
	return p.paint(pathColor, fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)) + ": "
}

// context prints the first line of span with a caret run under it.
// Columns are byte offsets; the caret run is measured in display cells.
func (p *printer) context(span source.Span, c *color.Color) {
	f := fileOf(p.fs, span)
	if f == nil || (span.Empty() && span.Start == 0) {
		return
	}
	start, end := p.fs.Resolve(span)
	text := strings.TrimRight(f.GetLine(start.Line), "\r\n")
	if p.opts.Width > 0 && runewidth.StringWidth(text) > int(p.opts.Width) {
		text = runewidth.Truncate(text, int(p.opts.Width), "...")
	}
	from := min(int(start.Col)-1, len(text))
	to := len(text)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(text))
	}

	var pad strings.Builder
	for _, r := range text[:from] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := max(runewidth.StringWidth(text[from:to]), 1)
	marks := "^" + strings.Repeat("~", width-1)

	gutter := fmt.Sprintf("%5d | ", start.Line)
	fmt.Fprintf(p.w, "%s%s\n", gutter, text)
	fmt.Fprintf(p.w, "%*s| %s%s\n", len(gutter)-2, "", pad.String(), p.paint(c, marks))
}
