package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"netxlate/internal/source"
	"netxlate/internal/token"
)

type TokenOutput struct {
	Kinds []string `json:"kinds"`
	Value string   `json:"value,omitempty"`
}

type LineOutput struct {
	Path     string        `json:"path"`
	Lines    []uint32      `json:"lines"`
	Raw      string        `json:"raw"`
	Tokens   []TokenOutput `json:"tokens"`
	Severity string        `json:"severity,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// FormatTokensPretty выводит токены строк в человекочитаемом формате:
// одна строка заголовка на логическую строку, затем по токену на строку.
func FormatTokensPretty(w io.Writer, lines []token.Line) error {
	for _, ln := range lines {
		first := uint32(0)
		if len(ln.Lines) > 0 {
			first = ln.Lines[0]
		}
		if _, err := fmt.Fprintf(w, "%s:%d: %s\n", source.BaseName(ln.Path), first, ln.Raw); err != nil {
			return err
		}
		if ln.Severity != token.SevNone {
			fmt.Fprintf(w, "    !%s: %s\n", ln.Severity, ln.Message)
		}
		for i, tok := range ln.Tokens {
			kinds := make([]string, len(tok.Kinds))
			for j, k := range tok.Kinds {
				kinds[j] = k.String()
			}
			fmt.Fprintf(w, "%4d: %-28s %q\n", i+1, strings.Join(kinds, "|"), tok.Value)
		}
	}
	return nil
}

// FormatTokensJSON выводит токены строк в JSON формате.
func FormatTokensJSON(w io.Writer, lines []token.Line) error {
	output := make([]LineOutput, 0, len(lines))
	for _, ln := range lines {
		out := LineOutput{
			Path:    ln.Path,
			Lines:   ln.Lines,
			Raw:     ln.Raw,
			Tokens:  make([]TokenOutput, 0, len(ln.Tokens)),
			Message: ln.Message,
		}
		if ln.Severity != token.SevNone {
			out.Severity = ln.Severity.String()
		}
		for _, tok := range ln.Tokens {
			kinds := make([]string, len(tok.Kinds))
			for j, k := range tok.Kinds {
				kinds[j] = k.String()
			}
			out.Tokens = append(out.Tokens, TokenOutput{Kinds: kinds, Value: tok.Value})
		}
		output = append(output, out)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
