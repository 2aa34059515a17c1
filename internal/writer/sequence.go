package writer

import (
	"slices"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"netxlate/internal/diag"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// sequence lists what is written for path in line order. .OPTIONS lines
// of one package collapse into the first one; with CombinePrint so do
// .PRINT lines of one analysis. Statements are copied before merging so
// the session is left as read.
func (w *Writer) sequence(path string) []stmt.Statement {
	var (
		out     []stmt.Statement
		options = map[string]*stmt.Command{}
		prints  = map[string]*stmt.Command{}
	)
	for _, st := range w.res.Session.StatementsInFile(path) {
		switch v := st.(type) {
		case *stmt.Device, *stmt.ModelDef, *stmt.Ref:
			out = append(out, st)
		case *stmt.Command:
			switch v.Type {
			case ".OPTIONS":
				pkg := v.PropText(token.OptionPkgType)
				if first, ok := options[pkg]; ok {
					v.Params.Each(func(k, val string) bool {
						first.SetParam(k, val)
						return true
					})
					continue
				}
				cp := clone(v)
				options[pkg] = cp
				out = append(out, cp)
			case ".PRINT":
				if bad := w.unsupportedOutputs(v); len(bad) > 0 {
					diag.ReportWarning(w.rep, diag.MapUnsupportedOutputVars, v.Span,
						"output variables "+strings.Join(bad, ", ")+" are not supported by "+w.lang.Name).
						WithNote(v.Span, "line kept as a comment").Emit()
					out = append(out, commentOut(v))
					continue
				}
				key := v.PropText(token.AnalysisType) + "|" + v.PropText(token.Params)
				if first, ok := prints[key]; ok && w.opts.CombinePrint {
					vars, _ := first.Prop(token.OutputVariables).(stmt.Words)
					more, _ := v.Prop(token.OutputVariables).(stmt.Words)
					for _, m := range more {
						if !slices.ContainsFunc(vars, func(s string) bool { return strings.EqualFold(s, m) }) {
							vars = append(vars, m)
						}
					}
					first.SetProp(token.OutputVariables, vars)
					continue
				}
				cp := clone(v)
				prints[key] = cp
				out = append(out, cp)
			default:
				out = append(out, st)
			}
		}
	}
	return out
}

func clone(c *stmt.Command) *stmt.Command {
	cp := *c
	cp.Props = c.Props.Clone()
	cp.Params = c.Params.Clone()
	return &cp
}

// unsupportedOutputs returns the output variables of a .PRINT whose
// accessor the output dialect lacks.
func (w *Writer) unsupportedOutputs(c *stmt.Command) []string {
	vars, _ := c.Prop(token.OutputVariables).(stmt.Words)
	var bad []string
	for _, v := range vars {
		fn, _, call := strings.Cut(v, "(")
		if !call || strings.HasPrefix(v, "{") || fn == "" {
			continue
		}
		if !w.lang.Admin.OutputFunction(fn) {
			bad = append(bad, v)
		}
	}
	return bad
}

// commentOut keeps a line the output dialect cannot take as a comment.
func commentOut(c *stmt.Command) *stmt.Ref {
	words := []string{c.LocalType}
	if a := c.PropText(token.AnalysisType); a != "" {
		words = append(words, a)
	}
	if v := c.PropText(token.OutputVariables); v != "" {
		words = append(words, v)
	}
	r := stmt.NewRef(stmt.RefComment, strings.Join(words, " "), c.Path, c.Span, c.Lines)
	r.InlineComment = c.InlineComment
	return r
}

var asciiOnly = runes.Remove(runes.Predicate(func(r rune) bool { return r > 0x7f }))

// stripNonASCII drops every rune outside ASCII.
func stripNonASCII(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			out, _, err := transform.String(asciiOnly, s)
			if err != nil {
				return s, false
			}
			return out, true
		}
	}
	return s, false
}
