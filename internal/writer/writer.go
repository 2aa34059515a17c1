// Package writer renders the statements of a read netlist in the output
// dialect, one output file per input file.
package writer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/mapping"
	"netxlate/internal/reader"
	"netxlate/internal/source"
	"netxlate/internal/stmt"
	"netxlate/internal/trace"
)

// Options configure the output files.
type Options struct {
	// Output is the path of the translated top-level file. Empty means
	// the input name with the dialect extension next to the input.
	Output string
	// CombinePrint merges .PRINT lines of the same analysis.
	CombinePrint bool
	// Jobs bounds concurrent file writes; 0 uses GOMAXPROCS.
	Jobs int
}

// Output is one translated file.
type Output struct {
	Path string
	Text string
}

// Writer renders one reader result.
type Writer struct {
	res  *reader.Result
	lang *descriptor.Language
	opts Options
	rep  diag.Reporter

	topDir string
	outDir string
	// outputs maps input paths to output paths.
	outputs map[string]string

	mu       sync.Mutex
	rendered map[string]string
}

func New(res *reader.Result, lang *descriptor.Language, opts Options, rep diag.Reporter) *Writer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput(res.Top, lang)
	}
	w := &Writer{
		res:      res,
		lang:     lang,
		opts:     opts,
		rep:      rep,
		topDir:   filepath.Dir(res.Top),
		outDir:   filepath.Dir(opts.Output),
		outputs:  make(map[string]string, len(res.Files)),
		rendered: make(map[string]string, len(res.Files)),
	}
	for _, f := range res.Files {
		if f == res.Top {
			w.outputs[f] = opts.Output
			continue
		}
		w.outputs[f] = filepath.Join(w.outDir, w.relative(f))
	}
	return w
}

// DefaultOutput names the translation of top: "amp.sp" becomes
// "amp_xyce.cir".
func DefaultOutput(top string, lang *descriptor.Language) string {
	ext := lang.Admin.Extension
	if ext == "" {
		ext = filepath.Ext(top)
	}
	base := strings.TrimSuffix(top, filepath.Ext(top))
	return base + "_" + lang.Name + ext
}

// relative places an included file under the output directory the way
// it sits under the input directory; files outside keep their base name.
func (w *Writer) relative(path string) string {
	rel, err := filepath.Rel(w.topDir, filepath.FromSlash(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return rel
}

// Outputs returns the output path of every input file, in read order.
func (w *Writer) Outputs() []string {
	out := make([]string, 0, len(w.res.Files))
	for _, f := range w.res.Files {
		out = append(out, w.outputs[f])
	}
	return out
}

// Rendered returns the files written by WriteAll, in read order.
func (w *Writer) Rendered() []Output {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Output, 0, len(w.rendered))
	for _, f := range w.res.Files {
		if text, ok := w.rendered[f]; ok {
			out = append(out, Output{Path: w.outputs[f], Text: text})
		}
	}
	return out
}

// Render returns the translated text of one input file.
func (w *Writer) Render(path string) string {
	emit := mapping.NewEmitter(w.lang)
	emit.File = func(ref string) string {
		target, ok := w.outputs[source.ResolveInclude(path, ref)]
		if !ok {
			return ref
		}
		rel, err := filepath.Rel(filepath.Dir(w.outputs[path]), target)
		if err != nil {
			return ref
		}
		return filepath.ToSlash(rel)
	}

	stmts := w.sequence(path)
	var b strings.Builder
	if !titleFirst(stmts) && path == w.res.Top {
		fmt.Fprintf(&b, "%s %s translated by netxlate\n", w.lang.Admin.CommentPrefix, filepath.Base(path))
	}
	for _, st := range stmts {
		text := emit.Statement(st)
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	out, stripped := stripNonASCII(b.String())
	if stripped {
		var sp source.Span
		if f, ok := w.res.FileSet.GetByPath(path); ok {
			sp.File = f.ID
		}
		diag.ReportWarning(w.rep, diag.IONonASCII, sp,
			"non-ASCII characters removed from the translation of "+filepath.Base(path)).Emit()
	}
	return out
}

// titleFirst moves the title of the file in front of synthesized lines
// and reports whether there was one.
func titleFirst(stmts []stmt.Statement) bool {
	i := slices.IndexFunc(stmts, func(st stmt.Statement) bool {
		r, ok := st.(*stmt.Ref)
		return ok && r.RefKind == stmt.RefTitle
	})
	if i < 0 {
		return false
	}
	title := stmts[i]
	copy(stmts[1:i+1], stmts[:i])
	stmts[0] = title
	return true
}

// WriteAll renders and writes every file concurrently, then copies the
// PWL data files the netlist references.
func (w *Writer) WriteAll(ctx context.Context) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "write", trace.CurrentSpan(ctx).SpanID)
	defer span.End(fmt.Sprintf("files=%d", len(w.res.Files)))

	jobs := w.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, f := range w.res.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return w.writeFile(w.outputs[f], w.Render(f))
		})
	}
	for _, pwl := range w.res.Factory.PWLFiles() {
		g.Go(func() error {
			return w.copyData(pwl)
		})
	}
	return g.Wait()
}

func (w *Writer) writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	// #nosec G306 -- netlists are meant to be shared
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// copyData copies a PWL file next to the translation when the output
// directory differs from the input directory.
func (w *Writer) copyData(ref string) error {
	src := source.ResolveInclude(w.res.Top, ref)
	dst := filepath.Join(w.outDir, w.relative(src))
	if filepath.Clean(filepath.FromSlash(src)) == filepath.Clean(dst) {
		return nil
	}
	in, err := os.Open(filepath.FromSlash(src))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			diag.ReportWarning(w.rep, diag.IOMissingFile, source.Span{}, "PWL file "+ref+" not found").Emit()
			return nil
		}
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy %s: %w", ref, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", ref, err)
	}
	return out.Close()
}
