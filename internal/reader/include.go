package reader

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"netxlate/internal/diag"
	"netxlate/internal/netlist"
	"netxlate/internal/scope"
	"netxlate/internal/source"
	"netxlate/internal/token"
)

// pendingInclude is an .INC file waiting for the end of the file body
// that named it.
type pendingInclude struct {
	path   string
	scope  scope.ScopeID
	line   *netlist.Line
	parent uint64
}

// include records the file of an .INC line for reading once the current
// file body is done. A file is read once; a later .INC of the same file at
// the top level moves it to the top-level scope as long as it is not read
// yet.
func (r *Reader) include(l *netlist.Line, parent uint64) {
	path := source.ResolveInclude(l.Path, l.KnownValue(token.Filename))
	cur := r.sess.Current()
	if prev, seen := r.master[path]; seen {
		if p, waiting := r.waiting[path]; waiting && cur == r.sess.Root() && prev != cur {
			p.scope = cur
			r.master[path] = cur
		}
		diag.ReportInfo(r.rep, diag.IOInfo, l.Span, path+" already included").Emit()
		return
	}
	p := &pendingInclude{path: path, scope: cur, line: l, parent: parent}
	r.master[path] = cur
	r.waiting[path] = p
	r.pending = append(r.pending, p)
}

// readIncludes reads the files recorded by include, those of the top
// scope first.
func (r *Reader) readIncludes(ctx context.Context, incs []*pendingInclude) error {
	root := r.sess.Root()
	slices.SortStableFunc(incs, func(a, b *pendingInclude) int {
		return cmp.Compare(b2i(a.scope != root), b2i(b.scope != root))
	})
	cur := r.sess.Current()
	// an included file leaves the scope it was read in
	defer r.sess.SetCurrent(cur)
	for _, p := range incs {
		delete(r.waiting, p.path)
		r.sess.SetCurrent(p.scope)
		if err := r.readFile(ctx, p.path, false, p.parent); err != nil {
			return fmt.Errorf("%s:%d: %w", p.line.Path, p.line.FirstLine(), err)
		}
	}
	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// library reads ".LIB file section". The selected section is merged into
// the current scope; the other sections of the file get their own scope
// so later references can pull them in.
func (r *Reader) library(ctx context.Context, l *netlist.Line, parent uint64) error {
	path := source.ResolveInclude(l.Path, l.KnownValue(token.Filename))
	entry := l.KnownValue(token.LibEntry)
	cur := r.sess.Current()

	if prev, seen := r.master[path]; seen {
		if slices.Contains(r.sess.Scope(prev).LibSections(), entry) {
			diag.ReportInfo(r.rep, diag.IOInfo, l.Span, fmt.Sprintf("section %s of %s already read", entry, path)).Emit()
			return nil
		}
		section := r.sess.GetChildScope(prev, entry)
		if !section.IsValid() || r.sess.Scope(section).OwnerKind != scope.OwnerLib {
			diag.ReportWarning(r.rep, diag.IOMissingFile, l.Span,
				fmt.Sprintf("section %s of %s was not found", entry, path)).Emit()
			return nil
		}
		r.sess.RetroactiveAddStatement(cur, section)
		r.sess.Scope(cur).AddLibSection(entry)
		return nil
	}

	r.master[path] = cur
	prev := r.f.SelectLib(entry)
	err := r.readFile(ctx, path, false, parent)
	r.f.SelectLib(prev)
	if err != nil {
		return fmt.Errorf("%s:%d: %w", l.Path, l.FirstLine(), err)
	}
	r.sess.SetCurrent(cur)
	if entry != "" {
		r.sess.Scope(cur).AddLibSection(entry)
	}
	return nil
}
