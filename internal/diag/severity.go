package diag

import "strings"

// Severity orders diagnostics: SevInfo < SevWarning < SevError.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{"INFO", "WARNING", "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// ParseTokenizerSeverity folds the tokenizer scale (info, warn, error,
// critical) into Severity. Critical lines are errors here; whether they stop
// the translation is up to the caller.
func ParseTokenizerSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "error":
		return SevError
	case "warn", "warning":
		return SevWarning
	}
	return SevInfo
}
