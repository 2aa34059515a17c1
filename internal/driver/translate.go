package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"netxlate/internal/cache"
	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/dialect"
	"netxlate/internal/reader"
	"netxlate/internal/scope"
	"netxlate/internal/source"
	"netxlate/internal/trace"
	"netxlate/internal/ui"
	"netxlate/internal/version"
	"netxlate/internal/writer"
)

// Result is the outcome of translating one top-level netlist.
type Result struct {
	Path   string
	Input  string
	Output string
	// Detection is set when the input dialect was detected.
	Detection *dialect.Classification

	FileSet *source.FileSet
	Bag     *diag.Bag
	// Outputs lists the files written, the top-level translation first.
	Outputs []string
	// Files lists the input files read.
	Files  []string
	Cached bool
}

// Failed reports whether the translation produced errors.
func (r *Result) Failed() bool { return r.Bag.HasErrors() }

// Translate reads path in the input dialect and writes its translation.
// Diagnostics go to the result's Bag; the returned error is fatal for the
// file. A result is returned with the error whenever diagnostics exist.
func Translate(ctx context.Context, path string, opts Options) (*Result, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "translate", trace.CurrentSpan(ctx).SpanID)
	defer span.End(path)
	ctx = trace.WithSpan(ctx, span)

	sink := opts.sink()
	res := &Result{
		Path:    path,
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(opts.maxDiagnostics()),
	}
	rep := diag.BagReporter{Bag: res.Bag}

	if abs, err := source.AbsolutePath(path); err == nil {
		res.Path = abs
	}
	top, err := res.FileSet.Load(res.Path, 0)
	if err != nil {
		sink.OnEvent(ui.Event{File: path, Stage: ui.StageRead, Status: ui.StatusError})
		return res, fmt.Errorf("%s: %w: %w", path, reader.ErrMissingFile, err)
	}

	in, out, err := pickDialects(res, top, &opts, rep)
	if err != nil {
		sink.OnEvent(ui.Event{File: path, Stage: ui.StageRead, Status: ui.StatusError})
		return res, err
	}
	output := opts.outputFor(res.Path, out)

	var key cache.Digest
	if opts.Cache != nil {
		key = cache.Key(res.Path, cache.Digest(res.FileSet.Get(top).Hash), cache.Options{
			Input:        in.Name,
			Output:       out.Name,
			OutputPath:   output,
			CombinePrint: opts.CombinePrint,
			Contexts:     opts.Contexts,
			Strict:       opts.Strict,
			Tool:         version.Plain,
		})
		p, ok, err := opts.Cache.Lookup(key)
		if err != nil {
			diag.ReportWarning(rep, diag.IOCacheError, source.Span{}, "cache lookup failed: "+err.Error()).Emit()
		}
		if ok {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache", "hit "+filepath.Base(path), span.ID())
			if err := replay(res, p, opts.NoWrite); err != nil {
				return res, err
			}
			sink.OnEvent(ui.Event{File: path, Stage: ui.StageWrite, Status: ui.StatusCached})
			return res, nil
		}
	}

	sink.OnEvent(ui.Event{File: path, Stage: ui.StageRead, Status: ui.StatusWorking})
	rd := reader.New(res.FileSet, reader.Options{
		Input:         in,
		Output:        out,
		TraceContexts: opts.Contexts,
		Strict:        opts.Strict,
		Timer:         opts.Timer,
	}, rep)
	read, err := rd.Read(ctx, res.Path)
	if err != nil {
		diag.ReportError(rep, fatalCode(err), source.Span{}, err.Error()).Emit()
		sink.OnEvent(ui.Event{File: path, Stage: ui.StageRead, Status: ui.StatusError})
		return res, err
	}
	res.Files = read.Files
	if opts.Contexts {
		sink.OnEvent(ui.Event{File: path, Stage: ui.StageContexts, Status: ui.StatusDone})
	}

	sink.OnEvent(ui.Event{File: path, Stage: ui.StageWrite, Status: ui.StatusWorking})
	w := writer.New(read, out, writer.Options{Output: output, CombinePrint: opts.CombinePrint, Jobs: opts.Jobs}, rep)
	if opts.NoWrite {
		// rendering still reports what the output dialect drops
		for _, f := range read.Files {
			w.Render(f)
		}
		sink.OnEvent(ui.Event{File: path, Stage: ui.StageWrite, Status: ui.StatusDone})
		return res, nil
	}
	idx := opts.Timer.Begin("write")
	err = w.WriteAll(ctx)
	opts.Timer.End(idx, fmt.Sprintf("files=%d", len(read.Files)))
	if err != nil {
		diag.ReportError(rep, diag.IOWriteError, source.Span{}, err.Error()).Emit()
		sink.OnEvent(ui.Event{File: path, Stage: ui.StageWrite, Status: ui.StatusError})
		return res, err
	}
	res.Outputs = w.Outputs()

	if opts.Cache != nil && !res.Bag.HasErrors() {
		p := payload(res, in.Name, out.Name, w.Rendered())
		if err := opts.Cache.Store(key, p); err != nil {
			diag.ReportWarning(rep, diag.IOCacheError, source.Span{}, "cache store failed: "+err.Error()).Emit()
		}
	}
	sink.OnEvent(ui.Event{File: path, Stage: ui.StageWrite, Status: ui.StatusDone})
	return res, nil
}

// pickDialects loads the input and output descriptors, detecting the input
// dialect from the top-level file when asked to.
func pickDialects(res *Result, top source.FileID, opts *Options, rep diag.Reporter) (in, out *descriptor.Language, err error) {
	name := opts.Input
	if name == "" || name == AutoInput {
		kind, c := dialect.Detect(res.FileSet, top)
		res.Detection = &c
		name = kind.String()
		if kind == dialect.Unknown {
			name = FallbackInput
			diag.ReportWarning(rep, diag.RdDialectSwitch, source.Span{File: top},
				"input dialect not recognised, reading as "+FallbackInput).Emit()
		} else {
			r := diag.ReportInfo(rep, diag.RdDialectSwitch, source.Span{File: top},
				fmt.Sprintf("input dialect detected as %s (confidence %.2f)", name, c.Confidence))
			if len(c.Reasons) > 0 {
				r.WithNote(source.Span{File: top}, "seen: "+strings.Join(c.Reasons, ", "))
			}
			r.Emit()
		}
	}
	if in, err = opts.Language(name); err != nil {
		return nil, nil, err
	}
	if out, err = opts.Language(opts.Output); err != nil {
		return nil, nil, err
	}
	if in.Name == out.Name {
		return nil, nil, fmt.Errorf("%w: %s", ErrSameDialect, in.Name)
	}
	res.Input, res.Output = in.Name, out.Name
	return in, out, nil
}

func fatalCode(err error) diag.Code {
	switch {
	case errors.Is(err, reader.ErrMissingFile):
		return diag.IOMissingFile
	case errors.Is(err, reader.ErrUnresolvedReference):
		return diag.ScpUnresolvedReference
	case errors.Is(err, scope.ErrNameConflict):
		return diag.ScpNameConflict
	default:
		return diag.UnknownCode
	}
}

func writerDefault(top string, lang *descriptor.Language) string {
	return writer.DefaultOutput(top, lang)
}
