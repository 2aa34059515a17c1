package dialect

import (
	"slices"
	"strings"

	"netxlate/internal/source"
)

// ObserveLine records the syntax evidence of one logical line: comment
// markers, expression delimiters and the keywords that follow the first
// word. The caller feeds lines in source order.
func ObserveLine(e *Evidence, text string, span source.Span) {
	if e == nil {
		return
	}
	t := strings.TrimSpace(text)
	if t == "" || strings.HasPrefix(t, "*") {
		return
	}
	fields := strings.Fields(t)
	first := strings.ToUpper(fields[0])
	RecordDirective(e, first, span)

	if strings.EqualFold(first, "simulator") {
		for _, f := range fields[1:] {
			k, v, ok := strings.Cut(f, "=")
			if !ok || !strings.EqualFold(k, "lang") {
				continue
			}
			if kind := Parse(v); kind != Unknown {
				e.Add(Hint{Dialect: kind, Score: 20, Reason: "simulator lang=" + v, Span: span})
			}
		}
		return
	}

	// "$" starts an inline comment only in hspice; a ";" comment is pspice or xyce
	if strings.Contains(t, " $") {
		e.Add(Hint{Dialect: HSpice, Score: 3, Reason: "inline comment `$`", Span: span})
	}
	if strings.Contains(t, ";") {
		e.Add(Hint{Dialect: PSpice, Score: 1, Reason: "inline comment `;`", Span: span})
		e.Add(Hint{Dialect: Xyce, Score: 1, Reason: "inline comment `;`", Span: span})
	}

	upper := strings.ToUpper(t)
	if strings.Contains(upper, "PARAMS:") {
		e.Add(Hint{Dialect: PSpice, Score: 3, Reason: "`PARAMS:` header", Span: span})
		e.Add(Hint{Dialect: Xyce, Score: 3, Reason: "`PARAMS:` header", Span: span})
	}
	if strings.Contains(t, "'") && !strings.Contains(t, "{") {
		e.Add(Hint{Dialect: HSpice, Score: 2, Reason: "quoted expression", Span: span})
	}
	if strings.Contains(t, "{") {
		e.Add(Hint{Dialect: PSpice, Score: 1, Reason: "braced expression", Span: span})
		e.Add(Hint{Dialect: Xyce, Score: 1, Reason: "braced expression", Span: span})
	}

	switch first {
	case ".OPTIONS", ".OPTION":
		if len(fields) > 1 && isOptionPackage(fields[1]) {
			e.Add(Hint{Dialect: Xyce, Score: 6, Reason: ".OPTIONS package " + strings.ToUpper(fields[1]), Span: span})
		}
	case ".PRINT":
		if len(fields) > 1 && strings.HasPrefix(strings.ToUpper(fields[1]), "FORMAT=") {
			e.Add(Hint{Dialect: Xyce, Score: 3, Reason: ".PRINT FORMAT", Span: span})
		}
	}
	if fields[0][0] == 'B' || fields[0][0] == 'b' {
		// behavioural sources are a xyce device; hspice and pspice use E/G
		e.Add(Hint{Dialect: Xyce, Score: 2, Reason: "B source", Span: span})
	}
}

func isOptionPackage(word string) bool {
	return slices.ContainsFunc(optionPackages, func(p string) bool { return strings.EqualFold(p, word) })
}

// Parse maps a dialect name, as written after lang=, to a Kind.
func Parse(name string) Kind {
	switch strings.ToLower(strings.Trim(name, `"'`)) {
	case "hspice", "spectre-hspice", "spice":
		return HSpice
	case "pspice":
		return PSpice
	case "xyce":
		return Xyce
	default:
		return Unknown
	}
}
