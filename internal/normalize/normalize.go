// Package normalize turns tokenizer output into dialect-neutral netlist
// lines and applies the textual fixes a foreign dialect needs before its
// statements can be built for the output dialect.
package normalize

import (
	"regexp"
	"strings"

	"netxlate/internal/diag"
	"netxlate/internal/netlist"
	"netxlate/internal/token"
)

// Options select the fixes applied for one input dialect.
type Options struct {
	Dialect string
	// Wrap puts braces around parameter expressions.
	Wrap bool
	// Spice3Math converts '^', TEMPER and the a/x unit suffixes.
	Spice3Math bool
	// MapOptions moves .OPTIONS parameters into output packages.
	MapOptions bool
	// ABM turns voltage dependent resistors into behavioral sources.
	ABM bool
}

// OptionsFor returns the fixes needed when reading dialect.
func OptionsFor(dialect string) Options {
	switch strings.ToLower(dialect) {
	case "hspice":
		return Options{Dialect: "hspice", Wrap: true, Spice3Math: true, MapOptions: true, ABM: true}
	case "pspice":
		return Options{Dialect: "pspice", Wrap: true, MapOptions: true, ABM: true}
	default:
		return Options{Dialect: strings.ToLower(dialect)}
	}
}

// Normalizer converts token lines of one translation. It remembers which
// one-off lines (binning option, TEMPER parameter) were already synthesized.
type Normalizer struct {
	opts Options
	rep  diag.Reporter

	binning bool
	temper  bool
}

func New(opts Options, rep diag.Reporter) *Normalizer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Normalizer{opts: opts, rep: rep}
}

// Options returns the active options.
func (n *Normalizer) Options() Options { return n.opts }

// SetOptions switches the input dialect.
func (n *Normalizer) SetOptions(opts Options) { n.opts = opts }

// Line converts one token line. The first returned line is the statement
// itself; the rest are synthesized companions. Nil means nothing to build.
func (n *Normalizer) Line(tl token.Line) []*netlist.Line {
	l := netlist.New(tl.Path, tl.File, tl.Span, tl.Lines)
	l.Raw = tl.Raw
	l.Severity, l.Message = tl.Severity, tl.Message

	switch tl.Severity {
	case token.SevError, token.SevCritical:
		diag.ReportError(n.rep, diag.RdTokenizer, tl.Span, tl.Message).
			WithNote(tl.Span, "line kept as a comment").Emit()
		l.Type, l.LocalType = netlist.TypeComment, netlist.TypeComment
		l.Comment = strings.TrimSpace(tl.Raw)
		return []*netlist.Line{l}
	case token.SevWarn:
		diag.ReportWarning(n.rep, diag.RdTokenizer, tl.Span, tl.Message).Emit()
	case token.SevInfo:
		diag.ReportInfo(n.rep, diag.RdTokenizer, tl.Span, tl.Message).Emit()
	}

	funcs := n.convert(l, tl.Tokens)
	var out []*netlist.Line
	// a .PARAM line that only defined functions leaves nothing behind
	if l.Type != "" && (len(funcs) == 0 || l.Params.Len() > 0) {
		out = append(out, n.fix(l)...)
	}
	for _, f := range funcs {
		out = append(out, n.fix(f)...)
	}
	return out
}

// convert fills l from tokens. Functions defined on .PARAM lines are split
// off into their own .FUNC lines, which are returned.
func (n *Normalizer) convert(l *netlist.Line, toks []token.Token) []*netlist.Line {
	var (
		funcs []*netlist.Line
		fn    *netlist.Line
		ic    *netlist.InitialCondition
	)
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok.Ambiguous() {
			l.AddLazy(tok.Value, tok.Kinds...)
			continue
		}
		switch k := tok.Kind(); k {
		case token.DirectiveName:
			name := upper(tok.Value)
			if alias, ok := directiveAliases[name]; ok {
				name = alias
			}
			l.Type, l.LocalType = name, tok.Value
		case token.DeviceType:
			l.Type, l.LocalType = upper(tok.Value), tok.Value
		case token.DeviceName:
			l.Name = tok.Value
		case token.Title:
			l.Type, l.LocalType = netlist.TypeTitle, netlist.TypeTitle
			l.Comment = tok.Value
		case token.Comment:
			l.Type, l.LocalType = netlist.TypeComment, netlist.TypeComment
			l.Comment = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(tok.Value, "*"), "//"))
		case token.InlineComment:
			l.InlineComment = tok.Value
		case token.ModelName:
			if l.Type == ".MODEL" {
				l.Name = tok.Value
			} else {
				l.Known.Set(k, tok.Value)
			}
		case token.SubcktName:
			if l.IsDirective() {
				l.Name = tok.Value
			} else {
				l.Known.Set(k, tok.Value)
			}
		case token.ParamName:
			if i+1 >= len(toks) || toks[i+1].Kind() != token.ParamValue {
				diag.ReportWarning(n.rep, diag.RdUnexpectedToken, l.Span, "Next Token is not a PARAM_VALUE").
					WithNote(l.Span, tok.Value).Emit()
				l.Params.Set(upper(tok.Value), "")
				continue
			}
			l.Params.Set(upper(tok.Value), toks[i+1].Value)
			i++
		case token.StandaloneParam:
			l.Params.Set(upper(tok.Value), "1")
		case token.ParamsHeader:
		case token.GeneralNode:
			switch {
			case ic != nil:
				ic.Node = tok.Value
			case l.Type == ".SUBCKT":
				l.Append(token.InterfaceNodeList, tok.Value)
			default:
				l.Append(token.NodeList, tok.Value)
				l.UnknownNodes = append(l.UnknownNodes, tok.Value)
			}
		case token.GeneralValue:
			if ic != nil {
				ic.Value = tok.Value
				l.ICs = append(l.ICs, *ic)
				ic = nil
				continue
			}
			l.Append(token.ValueList, tok.Value)
		case token.Voltage, token.Current:
			if l.Type == ".IC" || l.Type == ".NODESET" {
				ic = &netlist.InitialCondition{Kind: upper(tok.Value)}
				continue
			}
			l.Known.Set(k, tok.Value)
		case token.TransRefName:
			l.Append(token.Transient, tok.Value)
		case token.TableParam:
			l.Append(token.Table, tok.Value)
		case token.PolyParam:
			l.Append(token.Poly, tok.Value)
		case token.ControlDeviceName:
			l.Append(token.ControlDeviceList, tok.Value)
			l.Set(netlist.FlagControlDevice)
		case token.ControlDeviceValue:
			l.Known.Set(k, tok.Value)
			l.Set(netlist.FlagControlDevice)
		case token.SweepParam:
			l.Append(token.Sweep, tok.Value)
		case token.ValueList:
			l.Append(token.ValueList, tok.Value)
		case token.OutputVariable:
			l.Append(token.OutputVariables, tok.Value)
		case token.FuncNameValue:
			if l.Type == ".PARAM" || l.Type == ".GLOBAL_PARAM" {
				fn = l.Derive(".FUNC")
				fn.Name = tok.Value
				fn.Known.Set(k, tok.Value)
				funcs = append(funcs, fn)
				continue
			}
			l.Name = tok.Value
			l.Known.Set(k, tok.Value)
		case token.FuncArgValue:
			if fn != nil {
				fn.Append(token.FuncArgList, tok.Value)
				continue
			}
			l.Append(token.FuncArgList, tok.Value)
		case token.FuncExpression:
			if fn != nil {
				fn.Known.Set(k, tok.Value)
				fn = nil
				continue
			}
			l.Known.Set(k, tok.Value)
		case token.DataParamName:
			l.Append(token.ValueList, tok.Value)
		case token.DataParamValue:
			l.Append(token.DataParamValue, tok.Value)
		case token.MeasureParamName:
			val := ""
			if i+1 < len(toks) && toks[i+1].Kind() == token.MeasureParamValue {
				val = toks[i+1].Value
				i++
			}
			l.Append(token.MeasureParamValue, tok.Value+"="+val)
		case token.MeasureQualifier:
			l.Append(token.MeasureParamValue, tok.Value)
		case token.ResultNameValue:
			l.Name = tok.Value
			l.Known.Set(k, tok.Value)
		case token.RestOfLine:
			l.Append(token.RestOfLine, tok.Value)
		case token.TemperatureNode:
			l.Known.Set(k, tok.Value)
			l.Params.Set("TNODEOUT", "1")
			l.UnknownNodes = append(l.UnknownNodes, tok.Value)
		default:
			l.Known.Set(k, tok.Value)
			if k.IsNode() {
				l.UnknownNodes = append(l.UnknownNodes, tok.Value)
			}
		}
	}
	if l.IsDevice() {
		if m, ok := l.Params.Get("M"); ok {
			l.MParam = m
		}
	}
	return funcs
}

var binnedName = regexp.MustCompile(`^(.+)\.(\d+)$`)

// fix applies dialect fixes and returns the line plus synthesized lines.
func (n *Normalizer) fix(l *netlist.Line) []*netlist.Line {
	out := []*netlist.Line{l}
	temper := false
	switch {
	case l.IsDevice():
		n.fixDevice(l)
	case l.Type == ".MODEL":
		l.Known.Set(token.DeviceType, ModelDeviceType(l.Known.Value(token.ModelType)))
		temper = n.fixParams(l, true)
		if binnedName.MatchString(l.Name) && !n.binning {
			n.binning = true
			diag.ReportInfo(n.rep, diag.RdModelBinning, l.Span, "binned model "+l.Name+" enables model binning").Emit()
			opt := l.Derive(".OPTIONS")
			opt.Known.Set(token.OptionPkgType, "PARSER")
			opt.Params.Set("MODEL_BINNING", "true")
			opt.Set(netlist.FlagTop)
			out = append(out, opt)
		}
	case l.Type == ".PARAM" || l.Type == ".GLOBAL_PARAM" || l.Type == ".SUBCKT":
		temper = n.fixParams(l, l.Type != ".SUBCKT")
	case l.Type == ".FUNC":
		temper = n.fixFunc(l)
	case l.Type == ".IC", l.Type == ".NODESET":
		for i := range l.ICs {
			l.ICs[i].Value = n.value(l, l.ICs[i].Value)
		}
	case l.Type == ".TEMP":
		vals := l.List(token.ValueList)
		for i := range vals {
			vals[i] = n.value(l, vals[i])
		}
	case l.Type == ".PRINT":
		vars := l.List(token.OutputVariables)
		for i := range vars {
			vars[i] = CleanOutputVariable(vars[i])
		}
	case l.Type == ".OPTIONS":
		if n.opts.MapOptions && !l.Known.Has(token.OptionPkgType) {
			return n.mapOptions(l)
		}
	case l.Type == ".GLOBAL":
		return splitGlobal(l)
	case l.Type == ".DATA":
		for _, name := range l.List(token.ValueList) {
			gp := l.Derive(".GLOBAL_PARAM")
			gp.Params.Set(upper(name), "0")
			out = append(out, gp)
		}
	}
	if temper && !n.temper {
		n.temper = true
		gp := l.Derive(".GLOBAL_PARAM")
		gp.Params.Set(TemperParam, "25")
		gp.Set(netlist.FlagTop)
		out = append(out, gp)
	}
	return out
}

func (n *Normalizer) fixDevice(l *netlist.Line) {
	for _, k := range valueKinds {
		if v, ok := l.Known.Get(k); ok {
			l.Known.Set(k, n.value(l, v))
		}
	}
	for _, k := range []token.Kind{token.Transient, token.Poly, token.Table} {
		vals := l.List(k)
		for i, v := range vals {
			if !strings.Contains(v, "=") {
				vals[i] = n.value(l, v)
			}
		}
	}
	n.fixParams(l, false)

	if n.opts.ABM && l.Type == "R" {
		if v, ok := l.Known.Get(token.Value); ok && DetectABM(v) {
			pos, neg := l.Known.Value(token.PosNode), l.Known.Value(token.NegNode)
			l.Known.Delete(token.Value)
			l.Type = "B"
			l.Known.Set(token.Current, "I")
			l.Known.Set(token.Expression, "{V("+pos+","+neg+")/("+v+")}")
			diag.ReportInfo(n.rep, diag.RdInfo, l.Span, "voltage dependent resistor R"+l.Name+" becomes a behavioral source").Emit()
		}
	}
}

// valueKinds are known objects that may hold an expression.
var valueKinds = []token.Kind{
	token.Value, token.Expression, token.GainValue, token.TransconductanceValue,
	token.DCValueValue, token.ACMagValue, token.ACPhaseValue, token.CouplingValue, token.AreaValue,
}

// fixParams rewrites parameter values; definitions also get TEMPER
// replaced, which is reported by the result.
func (n *Normalizer) fixParams(l *netlist.Line, definition bool) bool {
	temper := false
	for _, k := range l.Params.Keys() {
		v := n.value(l, l.Params.Value(k))
		if definition && n.opts.Spice3Math && DetectTemper(v) {
			v = ReplaceTemper(v)
			temper = true
		}
		l.Params.Set(k, v)
	}
	return temper
}

func (n *Normalizer) fixFunc(l *netlist.Line) bool {
	body := n.value(l, l.Known.Value(token.FuncExpression))
	temper := false
	if n.opts.Spice3Math && DetectTemper(body) {
		body = ReplaceTemper(body)
		temper = true
	}
	if n.opts.Wrap && body != "" && !strings.HasPrefix(body, "{") {
		body = "{" + body + "}"
	}
	l.Known.Set(token.FuncExpression, body)
	return temper
}

// value applies the expression fixes of the input dialect to one value.
func (n *Normalizer) value(l *netlist.Line, v string) string {
	if v == "" {
		return v
	}
	if n.opts.Spice3Math {
		v = SIPrefix(v)
		v = ExponentSymbol(v)
	}
	if n.opts.Wrap {
		v = WrapExpression(v)
	}
	spaced, ok := SpaceTernary(v)
	if !ok {
		diag.ReportWarning(n.rep, diag.RdMalformedTernary, l.Span, "unbalanced ternary operator in "+v).Emit()
		return v
	}
	return spaced
}

// mapOptions moves each parameter into its output package; parameters
// without an equivalent are kept as a comment.
func (n *Normalizer) mapOptions(l *netlist.Line) []*netlist.Line {
	var (
		out   []*netlist.Line
		byPkg = map[string]*netlist.Line{}
	)
	for _, k := range l.Params.Keys() {
		v := l.Params.Value(k)
		m, ok := optionPackages[k]
		if !ok {
			diag.ReportWarning(n.rep, diag.RdOptionRetained, l.Span, "option "+k+" has no equivalent, kept as a comment").Emit()
			c := l.Derive(netlist.TypeComment)
			c.Comment = l.LocalType + " " + k + "=" + v
			out = append(out, c)
			continue
		}
		if m.Note != "" {
			diag.ReportInfo(n.rep, diag.RdInfo, l.Span, m.Note).Emit()
		}
		for _, pkg := range m.Packages {
			opt := byPkg[pkg]
			if opt == nil {
				opt = l.Derive(".OPTIONS")
				opt.LocalType = l.LocalType
				opt.Known.Set(token.OptionPkgType, pkg)
				byPkg[pkg] = opt
				out = append(out, opt)
			}
			opt.Params.Set(m.Name, v)
		}
	}
	return out
}

func splitGlobal(l *netlist.Line) []*netlist.Line {
	nodes := l.List(token.NodeList)
	if len(nodes) <= 1 {
		return []*netlist.Line{l}
	}
	out := make([]*netlist.Line, 0, len(nodes))
	for _, node := range nodes {
		g := l.Derive(".GLOBAL")
		g.LocalType = l.LocalType
		g.Append(token.NodeList, node)
		out = append(out, g)
	}
	return out
}

func upper(s string) string { return strings.ToUpper(s) }
