package driver

import (
	"netxlate/internal/diag"
	"netxlate/internal/lexer"
	"netxlate/internal/source"
	"netxlate/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Lines   []token.Line
	Bag     *diag.Bag
}

// Tokenize returns the tagged logical lines of one file in the given
// dialect, without following includes.
func Tokenize(path, dialectName string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	tz := lexer.New(fs, lexer.OptionsFor(dialectName))
	if !tz.Open(path, true) {
		return nil, tz.Err()
	}
	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}

	var lines []token.Line
	for {
		l, ok := tz.Next()
		if !ok {
			break
		}
		lines = append(lines, l)
		if l.Severity != token.SevNone {
			rep.Report(diag.RdTokenizer, diag.ParseTokenizerSeverity(l.Severity.String()), l.Span, l.Message, nil)
		}
	}
	return &TokenizeResult{FileSet: fs, File: tz.File(), Lines: lines, Bag: bag}, nil
}
