package diag

import (
	"fmt"

	"netxlate/internal/source"
)

type onceKey struct {
	code Code
	sev  Severity
	span source.Span
}

// OnceReporter holds diagnostics back until Flush and forwards one per
// code, severity and primary span. A subcircuit body is walked once per
// instantiation context, so the same statement would otherwise be reported
// for every instance; the repeats become a note on the first report.
type OnceReporter struct {
	next    Reporter
	order   []onceKey
	first   map[onceKey]Diagnostic
	repeats map[onceKey]int
}

func NewOnceReporter(next Reporter) *OnceReporter {
	return &OnceReporter{
		next:    next,
		first:   make(map[onceKey]Diagnostic),
		repeats: make(map[onceKey]int),
	}
}

func (r *OnceReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	k := onceKey{code: code, sev: sev, span: primary}
	if _, ok := r.first[k]; ok {
		r.repeats[k]++
		return
	}
	r.order = append(r.order, k)
	r.first[k] = Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes}
}

// Flush forwards the held diagnostics in first-seen order and resets r.
func (r *OnceReporter) Flush() {
	for _, k := range r.order {
		d := r.first[k]
		if n := r.repeats[k]; n > 0 {
			d = d.WithNote(d.Primary, fmt.Sprintf("repeated in %d more instantiation context(s)", n))
		}
		if r.next != nil {
			r.next.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		}
	}
	r.order = r.order[:0]
	clear(r.first)
	clear(r.repeats)
}
