// Package mapping builds typed statements from normalized netlist lines and
// writes them back as text. Both directions are driven by the prop and param
// tables of an output dialect descriptor; there is no per-device code.
package mapping

import (
	"fmt"
	"slices"
	"strings"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/netlist"
	"netxlate/internal/scope"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// Outcome tells the caller what Build did with a line.
type Outcome uint8

const (
	// Built: the statement was created and added to the session.
	Built Outcome = iota
	// Deferred: the line names a model that is not known yet; call Resolve
	// once the whole file was read.
	Deferred
	// Commented: the line is not supported and was kept as a comment.
	Commented
	// Skipped: nothing to build.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Built:
		return "built"
	case Deferred:
		return "deferred"
	case Commented:
		return "commented"
	default:
		return "skipped"
	}
}

// Result is the output of Build.
type Result struct {
	Stmt    stmt.Statement
	Outcome Outcome
}

// Factory turns lines into statements for one translation session.
type Factory struct {
	out  *descriptor.Language
	in   *descriptor.Language
	sess *scope.Session
	rep  diag.Reporter

	// renames maps reserved parameter names to their replacement.
	renames map[string]string
	// libs remembers, per open .LIB section, whether a scope was pushed.
	libs []bool

	// selected is the library section an including .LIB line asked for.
	selected string

	replaceGround bool
	prints        []*stmt.Command
	analysis      string
	controls      []*stmt.Device
	pwlFiles      []string
}

// NewFactory creates a factory writing for out. in supplies the input
// dialect admin settings (ground names); it may be nil.
func NewFactory(out, in *descriptor.Language, sess *scope.Session, rep diag.Reporter) *Factory {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Factory{out: out, in: in, sess: sess, rep: rep, renames: map[string]string{}}
}

// Output returns the output dialect.
func (f *Factory) Output() *descriptor.Language { return f.out }

// Session returns the scope session statements are added to.
func (f *Factory) Session() *scope.Session { return f.sess }

// SetInput switches the input dialect, used by .PREPROCESS and simulator
// switches inside a netlist.
func (f *Factory) SetInput(in *descriptor.Language) { f.in = in }

// ReplaceGround reports whether a ground synonym was used outside the
// ports of a subcircuit.
func (f *Factory) ReplaceGround() bool { return f.replaceGround }

// Build turns l into a statement and adds it to the current scope. Device
// lines that reference a model not seen yet are deferred.
func (f *Factory) Build(l *netlist.Line) (Result, error) {
	return f.build(l, false)
}

func (f *Factory) build(l *netlist.Line, final bool) (Result, error) {
	switch {
	case l.Type == "":
		return Result{Outcome: Skipped}, nil
	case l.Type == netlist.TypeComment:
		return f.ref(stmt.RefComment, l.Comment, l)
	case l.Type == netlist.TypeTitle:
		return f.ref(stmt.RefTitle, l.Comment, l)
	case l.Type == netlist.TypeData:
		return f.ref(stmt.RefData, l.Raw, l)
	case l.Type == ".MODEL":
		return f.buildModel(l)
	case l.IsDirective():
		return f.buildCommand(l)
	default:
		return f.buildDevice(l, final)
	}
}

func (f *Factory) ref(kind stmt.RefKind, text string, l *netlist.Line) (Result, error) {
	r := stmt.NewRef(kind, text, l.Path, l.Span, l.Lines)
	r.InlineComment = l.InlineComment
	if err := f.sess.Add(r); err != nil {
		return Result{}, err
	}
	return Result{Stmt: r, Outcome: Built}, nil
}

// comment keeps the original text of an unsupported line.
func (f *Factory) comment(l *netlist.Line) (Result, error) {
	text := strings.TrimSpace(l.Raw)
	if text == "" {
		text = strings.TrimSpace(l.LocalType + " " + l.Name)
	}
	res, err := f.ref(stmt.RefComment, text, l)
	res.Outcome = Commented
	return res, err
}

// builder carries the state of one statement under construction.
type builder struct {
	f    *Factory
	line *netlist.Line
	base *stmt.Base
	dev  *stmt.Device
	cmd  *stmt.Command
	// accept resolves a line param against the descriptor entry
	accept func(string) (descriptor.Param, bool)
	// consumed params are not copied again by the param step
	consumed map[string]bool
}

func (f *Factory) newBuilder(l *netlist.Line, st stmt.Statement) *builder {
	b := &builder{f: f, line: l, base: st.Common(), consumed: map[string]bool{}}
	b.base.InlineComment = l.InlineComment
	switch v := st.(type) {
	case *stmt.Device:
		b.dev = v
	case *stmt.Command:
		b.cmd = v
	}
	return b
}

// props runs the handler of every declared prop in order.
func (b *builder) props(props []descriptor.Prop) {
	for _, p := range props {
		fn := handlers[p.Handler]
		if fn == nil {
			continue
		}
		if v, ok := fn(b, p); ok {
			b.base.SetProp(p.Role, v)
		}
	}
}

// params copies the line params the entry accepts, renamed to their
// labels. Rejected params are removed with a warning naming owner.
func (b *builder) params(owner string) {
	for _, k := range b.line.Params.Keys() {
		if b.consumed[k] {
			continue
		}
		v := b.f.rename(b.line.Params.Value(k))
		p, ok := b.accept(k)
		if !ok {
			diag.ReportWarning(b.f.rep, diag.MapParamRemoved, b.line.Span,
				fmt.Sprintf("Parameter %s is not supported by %s in %s and was removed", k, owner, b.f.out.Name)).Emit()
			continue
		}
		b.base.SetParam(p.Label, v)
	}
}

// known returns the known object for role with reserved names renamed.
func (b *builder) known(role token.Kind) (string, bool) {
	v, ok := b.line.Known.Get(role)
	if !ok || v == "" {
		return "", false
	}
	return b.f.rename(v), true
}

func (b *builder) text(role token.Kind) (stmt.Value, bool) {
	v, ok := b.known(role)
	if !ok {
		return nil, false
	}
	return stmt.Text(v), true
}

// node interns a node of the current scope.
func (b *builder) node(name string, iface bool) *stmt.ENode {
	f := b.f
	if !iface && f.in != nil && f.in.Admin.IsGround(name) && !f.isPort(name) {
		if !f.replaceGround {
			diag.ReportInfo(f.rep, diag.MapInfo, b.line.Span,
				"ground node "+name+" is replaced by 0 in the output netlist").Emit()
		}
		f.replaceGround = true
	}
	if iface {
		n := stmt.NewENode(name)
		n.Interface = true
		return n
	}
	if n, ok := f.sess.GetObject(f.sess.Current(), scope.TagENode, name).(*stmt.ENode); ok {
		return n
	}
	n := stmt.NewENode(name)
	// the lookup above makes a conflict impossible
	_ = f.sess.Add(n)
	return n
}

// isPort reports whether name is a port of the subcircuit being read.
func (f *Factory) isPort(name string) bool {
	owner := f.sess.Owner(f.sess.Current())
	if owner == nil || owner.Type != ".SUBCKT" {
		return false
	}
	return slices.ContainsFunc(owner.InterfaceNodes(), func(n *stmt.ENode) bool {
		return strings.EqualFold(n.Name(), name)
	})
}

// lookupModel finds the model a line references: exact name, binned root,
// then the scope of the file named by the line.
func (f *Factory) lookupModel(l *netlist.Line, name string) *stmt.MasterModel {
	cur := f.sess.Current()
	if m, ok := f.sess.GetObject(cur, scope.TagModel, name).(*stmt.MasterModel); ok {
		return m
	}
	if root, binned := stmt.BinRoot(name); binned {
		if m, ok := f.sess.GetObject(cur, scope.TagModel, root).(*stmt.MasterModel); ok {
			return m
		}
	}
	if l != nil && l.ModelDefScope != "" {
		for _, st := range f.sess.StatementsInFile(l.ModelDefScope) {
			md, ok := st.(*stmt.ModelDef)
			if !ok {
				continue
			}
			root, _ := stmt.BinRoot(md.Name())
			if f.sess.Norm(md.Name()) == f.sess.Norm(name) || f.sess.Norm(root) == f.sess.Norm(name) {
				if m, ok := f.sess.GetObject(f.sess.ScopeOf(md.UID), scope.TagModel, root).(*stmt.MasterModel); ok {
					return m
				}
			}
		}
	}
	return nil
}
