package mapping

import (
	"fmt"
	"slices"
	"strings"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/expr"
	"netxlate/internal/netlist"
	"netxlate/internal/scope"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// analyses are the commands a .PRINT without an analysis type follows.
var analyses = map[string]string{
	".TRAN":  "TRAN",
	".AC":    "AC",
	".DC":    "DC",
	".NOISE": "NOISE",
	".HB":    "HB",
}

func (f *Factory) buildModel(l *netlist.Line) (Result, error) {
	typ := l.KnownValue(token.ModelType)
	level := l.Params.Value("LEVEL")
	version := l.Params.Value("VERSION")
	if level == "" {
		level = "1"
	}
	d := f.out.ModelDevice(typ, level, version)
	if d == nil && version != "" {
		if d = f.out.ModelDevice(typ, level, ""); d != nil {
			diag.ReportWarning(f.rep, diag.MapModelVersionNotFound, l.Span,
				fmt.Sprintf("model %s: version %s of %s level %s is not available, using %s", l.Name, version, typ, level, d.Key())).Emit()
		}
	}
	if d == nil {
		diag.ReportWarning(f.rep, diag.MapDeviceTypeNotFound, l.Span,
			fmt.Sprintf("model %s: %s level %s is not supported by %s", l.Name, typ, level, f.out.Name)).
			WithNote(l.Span, "line kept as a comment").Emit()
		return f.comment(l)
	}

	md := stmt.NewModelDef(l.Name, stmt.Identity{
		Type:       d.Name,
		LocalType:  typ,
		Level:      d.Level,
		LevelKey:   d.LevelKey,
		Version:    d.Version,
		VersionKey: d.VersionKey,
	}, l.Path, l.Span, l.Lines)
	b := f.newBuilder(l, md)
	b.consumed["LEVEL"] = true
	b.consumed["VERSION"] = true
	b.accept = d.ModelParam
	b.params("model " + d.Key())

	if _, err := f.sess.AddModel(md); err != nil {
		return Result{}, err
	}
	return Result{Stmt: md, Outcome: Built}, nil
}

func (f *Factory) buildCommand(l *netlist.Line) (Result, error) {
	if f.out.Admin.IsUnsupported(l.Type) {
		diag.ReportWarning(f.rep, diag.MapUnsupportedDirective, l.Span,
			l.LocalType+" is not supported by "+f.out.Name).
			WithNote(l.Span, "line kept as a comment").Emit()
		return f.comment(l)
	}
	dir := f.out.Directive(l.Type)
	if dir == nil {
		if l.Type == ".TEMP" {
			return f.convertTemp(l)
		}
		diag.ReportWarning(f.rep, diag.MapDirectiveNotFound, l.Span,
			"Directive "+l.LocalType+" is not known to "+f.out.Name).
			WithNote(l.Span, "line kept as a comment").Emit()
		return f.comment(l)
	}

	switch l.Type {
	case ".PARAM", ".GLOBAL_PARAM":
		if l.Params.Len() == 0 {
			return f.comment(l)
		}
		f.reserve(l)
	case ".ENDL":
		if len(f.libs) == 0 {
			diag.ReportWarning(f.rep, diag.MapInfo, l.Span, ".ENDL without an open .LIB section").Emit()
			return f.comment(l)
		}
	}

	name := l.Name
	if l.Type == ".LIB" {
		name = l.KnownValue(token.LibEntry)
	}
	cmd := stmt.NewCommand(name, dir.Name, l.LocalType, l.Path, l.Span, l.Lines)
	b := f.newBuilder(l, cmd)
	b.accept = func(k string) (descriptor.Param, bool) {
		if pkg := l.KnownValue(token.OptionPkgType); pkg != "" && !dir.PackageParam(pkg, k) {
			return descriptor.Param{}, false
		}
		return dir.Param(k)
	}
	b.props(dir.Props)
	if l.Type == ".PARAM" || l.Type == ".GLOBAL_PARAM" {
		for _, k := range l.Params.Keys() {
			cmd.SetParam(f.renamed(k), f.rename(l.Params.Value(k)))
		}
	} else {
		b.params(dir.Name)
	}
	if l.Type == ".TRAN" && !cmd.Props.Has(token.PrintStepValue) {
		cmd.SetProp(token.PrintStepValue, stmt.Text("0"))
	}
	if a, ok := analyses[l.Type]; ok && f.analysis == "" {
		f.analysis = a
	}
	return f.place(l, cmd)
}

// place adds cmd and moves the insertion point for scope opening and
// closing commands.
func (f *Factory) place(l *netlist.Line, cmd *stmt.Command) (Result, error) {
	res := Result{Stmt: cmd, Outcome: Built}
	sess := f.sess
	switch cmd.Type {
	case ".SUBCKT":
		if err := sess.Add(cmd); err != nil {
			return Result{}, err
		}
		sess.PushScope(cmd)
		return res, nil
	case ".ENDS":
		err := sess.Add(cmd)
		if owner := sess.Owner(sess.Current()); owner != nil && owner.Type == ".SUBCKT" {
			sess.PopScope()
		}
		return res, err
	case ".LIB":
		if l.Known.Has(token.Filename) {
			return res, sess.Add(cmd)
		}
		entry := cmd.LibEntry()
		cur := sess.Current()
		if child := sess.GetChildScope(cur, entry); child.IsValid() && sess.Scope(child).OwnerKind == scope.OwnerLib {
			// a reference to a section read earlier
			if err := sess.Add(cmd); err != nil {
				return Result{}, err
			}
			sess.RetroactiveAddStatement(cur, child)
			sess.Scope(cur).AddLibSection(entry)
			return res, nil
		}
		if err := sess.Add(cmd); err != nil {
			return Result{}, err
		}
		push := !strings.EqualFold(entry, f.selected)
		if push {
			sess.PushScope(cmd)
		}
		f.libs = append(f.libs, push)
		return res, nil
	case ".ENDL":
		err := sess.Add(cmd)
		pushed := f.libs[len(f.libs)-1]
		f.libs = f.libs[:len(f.libs)-1]
		if pushed {
			sess.PopScope()
		}
		return res, err
	}
	return res, sess.Add(cmd)
}

// SelectLib sets the section an including .LIB line asked for and returns
// the previous selection. Other sections of the file get their own scope.
func (f *Factory) SelectLib(entry string) string {
	prev := f.selected
	f.selected = entry
	return prev
}

// convertTemp rewrites .TEMP, which the output dialect lacks: one value
// sets the device temperature, several values become a temperature sweep.
func (f *Factory) convertTemp(l *netlist.Line) (Result, error) {
	vals := l.List(token.ValueList)
	var out *netlist.Line
	switch len(vals) {
	case 0:
		return f.comment(l)
	case 1:
		out = l.Derive(".OPTIONS")
		out.Known.Set(token.OptionPkgType, "DEVICE")
		out.Params.Set("TEMP", vals[0])
	default:
		out = l.Derive(".STEP")
		out.Append(token.Sweep, "TEMP", "LIST")
		out.Append(token.Sweep, vals...)
	}
	out.InlineComment = l.InlineComment
	diag.ReportInfo(f.rep, diag.MapInfo, l.Span, l.LocalType+" written as "+out.Type).Emit()
	return f.buildCommand(out)
}

// reserve renames parameters whose name the output dialect reserves.
func (f *Factory) reserve(l *netlist.Line) {
	admin := f.out.Admin
	for _, k := range l.Params.Keys() {
		if !admin.IsReserved(k) {
			continue
		}
		key := strings.ToUpper(k)
		if _, done := f.renames[key]; done {
			continue
		}
		f.renames[key] = admin.ReservedPrefix + k
		diag.ReportWarning(f.rep, diag.MapConflictingVariable, l.Span,
			fmt.Sprintf("%s is a reserved name in %s and is renamed to %s", k, f.out.Name, f.renames[key])).Emit()
	}
}

func (f *Factory) renamed(name string) string {
	if r, ok := f.renames[strings.ToUpper(name)]; ok {
		return r
	}
	return name
}

// rename rewrites references to renamed parameters inside an expression.
func (f *Factory) rename(v string) string {
	if len(f.renames) == 0 || v == "" {
		return v
	}
	comps := expr.FindComponents(v, expr.Ident)
	// nested call arguments are reported after their call
	slices.SortFunc(comps, func(a, b expr.Component) int { return b.Start - a.Start })
	for _, c := range comps {
		if r, ok := f.renames[strings.ToUpper(c.Text)]; ok {
			v = v[:c.Start] + r + v[c.End:]
		}
	}
	return v
}

// FixPrintAnalysis gives every .PRINT written without an analysis type
// the type of the first analysis command.
func (f *Factory) FixPrintAnalysis() {
	if f.analysis == "" {
		return
	}
	for _, p := range f.prints {
		p.SetProp(token.AnalysisType, stmt.Text(f.analysis))
	}
	f.prints = nil
}

// OpenSections reports library sections still open at the end of input.
func (f *Factory) OpenSections() int { return len(f.libs) }

// SortedRenames lists reserved names renamed so far, for reporting.
func (f *Factory) SortedRenames() []string {
	out := make([]string, 0, len(f.renames))
	for k, v := range f.renames {
		out = append(out, k+"="+v)
	}
	slices.Sort(out)
	return out
}
