package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"netxlate/internal/cache"
	"netxlate/internal/diag"
	"netxlate/internal/source"
	"netxlate/internal/writer"
)

// payload records a finished translation for the cache.
func payload(res *Result, input, output string, files []writer.Output) *cache.Payload {
	p := &cache.Payload{
		Top:    res.Path,
		Input:  input,
		Output: output,
	}
	for _, f := range res.Files {
		d, err := cache.HashFile(f)
		if err != nil {
			// a file that cannot be hashed again can never be fresh
			continue
		}
		p.Files = append(p.Files, f)
		p.FileHashes = append(p.FileHashes, d)
	}
	for _, f := range files {
		p.Outputs = append(p.Outputs, cache.OutputFile{Path: f.Path, Text: f.Text})
	}
	for _, d := range res.Bag.Items() {
		p.Diagnostics = append(p.Diagnostics, storedDiagnostic(res.FileSet, d))
	}
	return p
}

func storedDiagnostic(fs *source.FileSet, d diag.Diagnostic) cache.Diagnostic {
	out := cache.Diagnostic{Severity: uint8(d.Severity), Code: uint16(d.Code), Message: d.Message}
	if int(d.Primary.File) < fs.Len() {
		start, _ := fs.Resolve(d.Primary)
		out.Path = fs.Get(d.Primary.File).Path
		if !d.Primary.Empty() || d.Primary.Start > 0 {
			out.Line = start.Line
		}
	}
	return out
}

// replay restores a cached translation: its diagnostics are reported
// again and its files written unless they already hold the same text.
func replay(res *Result, p *cache.Payload, noWrite bool) error {
	res.Cached = true
	res.Files = p.Files
	for _, f := range p.Files {
		if _, ok := res.FileSet.GetByPath(f); !ok {
			if _, err := res.FileSet.Load(f, source.FileIncluded); err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
		}
	}
	for _, cd := range p.Diagnostics {
		var sp source.Span
		if f, ok := res.FileSet.GetByPath(cd.Path); ok {
			sp.File = f.ID
			if cd.Line > 0 {
				sp = f.LineSpan(cd.Line)
			}
		}
		res.Bag.Add(diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), sp, cd.Message))
	}
	if noWrite {
		return nil
	}
	for _, o := range p.Outputs {
		if cur, err := os.ReadFile(o.Path); err == nil && string(cur) == o.Text {
			res.Outputs = append(res.Outputs, o.Path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(o.Path), 0o755); err != nil {
			return err
		}
		// #nosec G306 -- netlists are meant to be shared
		if err := os.WriteFile(o.Path, []byte(o.Text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.Path, err)
		}
		res.Outputs = append(res.Outputs, o.Path)
	}
	return nil
}
