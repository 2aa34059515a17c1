package diag

import (
	"slices"

	"netxlate/internal/source"
)

// Note points at a secondary location, e.g. the earlier definition in a
// name conflict.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one structured finding: severity, code, primary location
// (file plus line range via the span) and a message.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// WithNote returns d with one more note; d's own notes are left untouched.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(slices.Clip(d.Notes), Note{Span: sp, Msg: msg})
	return d
}
