package mapping

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"netxlate/internal/descriptor"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// inlineMarker starts an end-of-line comment in the output.
const inlineMarker = ";"

// Emitter writes statements in the syntax of one dialect.
type Emitter struct {
	lang *descriptor.Language
	// File rewrites the file names of .INC and .LIB lines; nil keeps them.
	File func(string) string
}

func NewEmitter(lang *descriptor.Language) *Emitter {
	return &Emitter{lang: lang}
}

// fragment is one piece of an output line. Glued fragments are written
// without a separating space.
type fragment struct {
	text string
	glue bool
}

// Statement renders st. Lines are wrapped at the line width of the
// dialect. Placeholders, nodes and model aggregates render as "".
func (e *Emitter) Statement(st stmt.Statement) string {
	var (
		frags []fragment
		base  = st.Common()
	)
	switch v := st.(type) {
	case *stmt.Device:
		frags = e.device(v)
	case *stmt.Command:
		frags = e.command(v)
	case *stmt.ModelDef:
		frags = e.model(v)
	case *stmt.Ref:
		return e.ref(v)
	default:
		return ""
	}
	out := e.wrap(join(frags))
	if base.InlineComment != "" {
		out += " " + inlineMarker + " " + base.InlineComment
	}
	return out
}

func (e *Emitter) device(d *stmt.Device) []fragment {
	frags := []fragment{{text: d.FullName()}}
	entry := e.lang.Device(d.Type, d.Level, d.Version)
	if entry == nil {
		entry = e.lang.DefaultDevice(d.Type)
	}
	if entry != nil {
		frags = e.props(frags, &d.Base, entry.Props)
	} else {
		d.Props.Each(func(_ token.Kind, v stmt.Value) bool {
			frags = append(frags, fragment{text: v.SpiceString()})
			return true
		})
	}
	return appendParams(frags, d.Params)
}

func (e *Emitter) command(c *stmt.Command) []fragment {
	dir := e.lang.Directive(c.Type)
	frags := []fragment{{text: c.Type}}
	if dir == nil {
		return appendParams(frags, c.Params)
	}
	if dir.WriteName && c.Name() != "" {
		frags = append(frags, fragment{text: c.Name()})
	}
	frags = e.props(frags, &c.Base, dir.Props)
	if c.Params.Len() > 0 && dir.ParamsHeader != "" {
		frags = append(frags, fragment{text: dir.ParamsHeader})
	}
	return appendParams(frags, c.Params)
}

func (e *Emitter) model(m *stmt.ModelDef) []fragment {
	frags := []fragment{{text: ".MODEL"}, {text: m.Name()}, {text: m.LocalType}}
	if m.Level != "1" || len(e.lang.Devices(m.Type)) > 1 {
		frags = append(frags, fragment{text: "LEVEL=" + m.Level})
	}
	if m.Version != "" {
		frags = append(frags, fragment{text: "VERSION=" + m.Version})
	}
	return appendParams(frags, m.Params)
}

func (e *Emitter) ref(r *stmt.Ref) string {
	switch r.RefKind {
	case stmt.RefComment:
		prefix := e.lang.Admin.CommentPrefix
		lines := strings.Split(r.Text, "\n")
		for i, l := range lines {
			if l = strings.TrimRight(l, " \t"); l == "" {
				lines[i] = prefix
				continue
			}
			lines[i] = prefix + " " + l
		}
		return strings.Join(lines, "\n")
	default:
		return r.Text
	}
}

func (e *Emitter) props(frags []fragment, b *stmt.Base, props []descriptor.Prop) []fragment {
	for _, p := range props {
		v := b.Prop(p.Role)
		if v == nil {
			continue
		}
		if f, ok := e.render(b, p, v); ok {
			frags = append(frags, f)
		}
	}
	return frags
}

func (e *Emitter) render(b *stmt.Base, p descriptor.Prop, v stmt.Value) (fragment, bool) {
	text := v.SpiceString()
	if (p.Role == token.Filename) && e.File != nil {
		text = e.File(text)
	}
	switch p.RenderKind() {
	case descriptor.RSkip:
		return fragment{}, false
	case descriptor.RKeyValue:
		text = p.Label + "=" + text
	case descriptor.RBracketed:
		text = brace(text)
	case descriptor.RValueExpression:
		text = "VALUE=" + brace(text)
	case descriptor.RVoltageExpression:
		text = "V=" + brace(text)
	case descriptor.RCurrentExpression:
		text = "I=" + brace(text)
	case descriptor.RModelLevel:
		text = "LEVEL=" + text
	case descriptor.RFuncArgs:
		if w, ok := v.(stmt.Words); ok {
			return fragment{text: "(" + strings.Join(w, ",") + ")", glue: true}, true
		}
	case descriptor.RSubcircuitParams:
		if p.Label != "" {
			text = p.Label + " " + text
		}
	case descriptor.RDataList:
		text = dataRows(b, v, e.lang.Admin.Continuation)
	}
	if text == "" {
		return fragment{}, false
	}
	if p.Label != "" && p.RenderKind() == descriptor.RString {
		text = p.Label + " " + text
	}
	return fragment{text: text}, true
}

// dataRows breaks table values into one continuation line per row.
func dataRows(b *stmt.Base, v stmt.Value, cont string) string {
	w, ok := v.(stmt.Words)
	cols, _ := b.Prop(token.ValueList).(stmt.Words)
	if !ok || len(cols) == 0 {
		return v.SpiceString()
	}
	var sb strings.Builder
	for i := 0; i < len(w); i += len(cols) {
		end := min(i+len(cols), len(w))
		sb.WriteString("\n" + cont + " " + strings.Join(w[i:end], " "))
	}
	return strings.TrimPrefix(sb.String(), "\n")
}

func appendParams(frags []fragment, params interface {
	Keys() []string
	Value(string) string
}) []fragment {
	for _, k := range params.Keys() {
		v := params.Value(k)
		if v == "" {
			frags = append(frags, fragment{text: k})
			continue
		}
		frags = append(frags, fragment{text: k + "=" + v})
	}
	return frags
}

func join(frags []fragment) string {
	var b strings.Builder
	for i, f := range frags {
		switch {
		case i == 0 || f.glue:
		case strings.HasPrefix(f.text, "\n"):
		default:
			b.WriteByte(' ')
		}
		b.WriteString(f.text)
	}
	return b.String()
}

func brace(s string) string {
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}
	return "{" + s + "}"
}

// wrap folds every physical line of s at the line width. Words inside
// brackets or quotes are never split.
func (e *Emitter) wrap(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = e.wrapLine(l)
	}
	return strings.Join(lines, "\n")
}

func (e *Emitter) wrapLine(s string) string {
	width := e.lang.Admin.LineWidth
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	cont := e.lang.Admin.Continuation
	var (
		b   strings.Builder
		cur int
	)
	for i, w := range splitWords(s) {
		ww := runewidth.StringWidth(w)
		switch {
		case i == 0:
		case cur+1+ww > width && cur > runewidth.StringWidth(cont)+1:
			b.WriteString("\n" + cont + " ")
			cur = runewidth.StringWidth(cont) + 1
		default:
			b.WriteByte(' ')
			cur++
		}
		b.WriteString(w)
		cur += ww
	}
	return b.String()
}

// splitWords splits on blanks outside (), {}, [] and quotes.
func splitWords(s string) []string {
	var (
		out   []string
		depth int
		quote rune
		start = -1
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '{' || r == '[':
			depth++
		case r == ')' || r == '}' || r == ']':
			if depth > 0 {
				depth--
			}
		case (r == ' ' || r == '\t') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
