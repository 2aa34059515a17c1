// Package reader drives one top-level netlist through tokenizing,
// normalization and statement building. Included files and library
// sections are read recursively into the scopes that reference them; once
// the whole tree is read the deferred lines and forward references are
// resolved.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/instctx"
	"netxlate/internal/lexer"
	"netxlate/internal/mapping"
	"netxlate/internal/netlist"
	"netxlate/internal/normalize"
	"netxlate/internal/observ"
	"netxlate/internal/scope"
	"netxlate/internal/source"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
	"netxlate/internal/trace"
)

var (
	// ErrMissingFile is returned when the top-level netlist or a file it
	// includes cannot be read.
	ErrMissingFile = errors.New("netlist file not found")
	// ErrUnresolvedReference is returned in strict mode for a device whose
	// model or subcircuit is never defined.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// Options configure one read.
type Options struct {
	// Input is the dialect the netlist is written in.
	Input *descriptor.Language
	// Output is the dialect statements are built for.
	Output *descriptor.Language
	// TraceContexts evaluates user function calls per subcircuit instance.
	TraceContexts bool
	// Strict turns unresolved model and subcircuit references into errors.
	Strict bool
	// Evaluator computes traced calls; nil means instctx.Numeric.
	Evaluator instctx.Evaluator
	// Timer collects phase timings when set.
	Timer *observ.Timer
}

// Result is everything the writer needs.
type Result struct {
	Top      string
	FileSet  *source.FileSet
	Session  *scope.Session
	Factory  *mapping.Factory
	Contexts []*instctx.Context
	// Files lists every file read, the top-level file first, then in the
	// order they were read. Libraries are read where their .LIB line is;
	// included files after the body of the file naming them.
	Files []string
}

type deferred struct {
	line  *netlist.Line
	scope scope.ScopeID
}

// Reader reads one top-level netlist. It is not safe for concurrent use;
// create one per top-level file.
type Reader struct {
	opts Options
	rep  diag.Reporter
	fs   *source.FileSet
	sess *scope.Session
	f    *mapping.Factory
	norm *normalize.Normalizer
	lex  lexer.Options

	// master maps absolute paths to the scope they are read into.
	master   map[string]scope.ScopeID
	files    []string
	deferred []deferred
	// pending collects the .INC files of the file body being read;
	// waiting indexes every include not read yet by path.
	pending []*pendingInclude
	waiting map[string]*pendingInclude
}

func New(fs *source.FileSet, opts Options, rep diag.Reporter) *Reader {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	if fs == nil {
		fs = source.NewFileSet()
	}
	sess := scope.NewSession(scope.Options{CaseInsensitive: opts.Input.Admin.CaseInsensitive}, rep)
	return &Reader{
		opts:   opts,
		rep:    rep,
		fs:     fs,
		sess:   sess,
		f:      mapping.NewFactory(opts.Output, opts.Input, sess, rep),
		norm:   normalize.New(normalize.OptionsFor(opts.Input.Name), rep),
		lex:    lexer.OptionsFor(opts.Input.Name),
		master:  make(map[string]scope.ScopeID),
		waiting: make(map[string]*pendingInclude),
	}
}

// Read translates path and everything it includes into statements. The
// returned error is fatal for the file: a missing file, a name conflict at
// the top level or, in strict mode, an unresolved reference.
func (r *Reader) Read(ctx context.Context, path string) (*Result, error) {
	t := trace.FromContext(ctx)
	span := trace.Begin(t, trace.ScopeFile, path, trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	top := path
	if abs, err := source.AbsolutePath(path); err == nil {
		top = abs
	}
	idx := r.begin("read")
	r.master[top] = r.sess.Root()
	err := r.readFile(ctx, top, true, span.ID())
	r.end(idx, fmt.Sprintf("files=%d", len(r.files)))
	if err != nil {
		return nil, err
	}

	idx = r.begin("resolve")
	err = r.resolve(ctx, span.ID())
	r.end(idx, fmt.Sprintf("deferred=%d", len(r.deferred)))
	if err != nil {
		return nil, err
	}

	res := &Result{Top: top, FileSet: r.fs, Session: r.sess, Factory: r.f, Files: r.files}
	if r.opts.TraceContexts {
		idx = r.begin("contexts")
		pass := trace.Begin(t, trace.ScopePass, "trace_contexts", span.ID())
		once := diag.NewOnceReporter(r.rep)
		res.Contexts = instctx.New(r.sess, once).Trace()
		instctx.NewApplier(r.opts.Evaluator, once).Apply(res.Contexts)
		once.Flush()
		pass.End(fmt.Sprintf("contexts=%d", len(res.Contexts)))
		r.end(idx, "")
	}
	return res, nil
}

func (r *Reader) begin(name string) int {
	if r.opts.Timer == nil {
		return -1
	}
	return r.opts.Timer.Begin(name)
}

func (r *Reader) end(idx int, note string) {
	if r.opts.Timer == nil || idx < 0 {
		return
	}
	r.opts.Timer.End(idx, note)
}

// readFile reads one file into the current scope, then the files it
// includes.
func (r *Reader) readFile(ctx context.Context, path string, top bool, parent uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tz := lexer.New(r.fs, r.lex)
	if !tz.Open(path, top) {
		return fmt.Errorf("%s: %w: %w", path, ErrMissingFile, tz.Err())
	}
	r.files = append(r.files, path)

	outer := r.pending
	r.pending = nil
	defer func() { r.pending = outer }()

	pass := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "build", parent)
	n := 0
	for {
		tl, ok := tz.Next()
		if !ok {
			break
		}
		n++
		if r.switchDialect(tz, tl) {
			continue
		}
		for _, l := range r.norm.Line(tl) {
			if err := r.build(ctx, l, parent); err != nil {
				pass.End("failed")
				return err
			}
		}
	}
	pass.End(fmt.Sprintf("lines=%d", n))
	return r.readIncludes(ctx, r.pending)
}

func (r *Reader) build(ctx context.Context, l *netlist.Line, parent uint64) error {
	res, err := r.f.Build(l)
	if err != nil {
		return fmt.Errorf("%s:%d: %w", l.Path, l.FirstLine(), err)
	}
	switch {
	case res.Outcome == mapping.Deferred:
		r.deferred = append(r.deferred, deferred{line: l, scope: r.sess.Current()})
	case res.Outcome != mapping.Built:
	case l.Type == ".INC":
		r.include(l, parent)
	case l.Type == ".LIB" && l.Known.Has(token.Filename):
		return r.library(ctx, l, parent)
	}
	return nil
}

// switchDialect handles "simulator lang=name" lines, which change the
// input dialect for the rest of the file.
func (r *Reader) switchDialect(tz *lexer.Tokenizer, tl token.Line) bool {
	fields := strings.Fields(tl.Raw)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "simulator") {
		return false
	}
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok || !strings.EqualFold(k, "lang") {
			continue
		}
		in, err := descriptor.Load(v)
		if err != nil {
			diag.ReportWarning(r.rep, diag.RdDialectSwitch, tl.Span, err.Error()).
				WithNote(tl.Span, "input dialect unchanged").Emit()
			return true
		}
		r.lex = lexer.OptionsFor(in.Name)
		tz.SetOptions(r.lex)
		r.norm.SetOptions(normalize.OptionsFor(in.Name))
		r.f.SetInput(in)
		diag.ReportInfo(r.rep, diag.RdDialectSwitch, tl.Span, "input dialect is now "+in.Name).Emit()
	}
	return true
}

// resolve runs the passes that need the whole tree.
func (r *Reader) resolve(ctx context.Context, parent uint64) error {
	pass := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "resolve", parent)
	defer pass.End("")

	sess := r.sess
	for _, d := range r.deferred {
		sess.SetCurrent(d.scope)
		res, err := r.f.Resolve(d.line)
		if err != nil {
			sess.SetCurrent(sess.Root())
			return fmt.Errorf("%s:%d: %w", d.line.Path, d.line.FirstLine(), err)
		}
		if dev, ok := res.Stmt.(*stmt.Device); ok && dev.Unresolved && r.opts.Strict {
			sess.SetCurrent(sess.Root())
			return fmt.Errorf("%s:%d: %s: %w", d.line.Path, d.line.FirstLine(), d.line.KnownValue(token.ModelName), ErrUnresolvedReference)
		}
	}
	sess.SetCurrent(sess.Root())

	sess.ResolveLazyBindings()
	r.f.ResolveControlDevices()
	r.f.FixPrintAnalysis()
	if n := r.f.OpenSections(); n > 0 {
		diag.ReportWarning(r.rep, diag.RdUnbalancedBrackets, source.Span{},
			fmt.Sprintf("%d .LIB section(s) not closed by .ENDL", n)).Emit()
	}
	if r.f.ReplaceGround() {
		if err := r.replaceGround(); err != nil {
			return err
		}
	}
	if !r.opts.Input.Admin.CaseInsensitive && r.opts.Output.Admin.CaseInsensitive {
		sess.WarnCaseSensitivity()
	}
	return nil
}

// replaceGround adds ".PREPROCESS REPLACEGROUND TRUE" to the top-level
// file, ahead of every other statement.
func (r *Reader) replaceGround() error {
	top := r.files[0]
	var id source.FileID
	if f, ok := r.fs.GetByPath(top); ok {
		id = f.ID
	}
	l := netlist.New(top, id, source.Span{File: id}, nil)
	l.Type, l.LocalType = ".PREPROCESS", ".PREPROCESS"
	l.Known.Set(token.PreprocessKeyword, "REPLACEGROUND")
	l.Append(token.ValueList, "TRUE")
	if _, err := r.f.Build(l); err != nil {
		return fmt.Errorf("%s: %w", top, err)
	}
	return nil
}
