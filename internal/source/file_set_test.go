package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("top.cir", []byte("R1 1 0 1k"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("top.cir", []byte("R1 1 0 2k"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latest, ok := fs.GetByPath("top.cir")
	if !ok || latest.ID != id2 {
		t.Errorf("GetByPath = %v,%v; want file %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "R1 1 0 1k" {
		t.Errorf("old content lost: %q", got)
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.cir")
	data := []byte("\xEF\xBB\xBF* title\r\nR1 1 0 1k\r\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path, FileIncluded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 || f.Flags&FileIncluded == 0 {
		t.Errorf("unexpected flags %b", f.Flags)
	}
	if got := f.GetLine(2); got != "R1 1 0 1k" {
		t.Errorf("GetLine(2) = %q", got)
	}
	if f.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", f.LineCount())
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("v.cir", []byte("ab\ncd\n"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("start = %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 3}) {
		t.Errorf("end = %+v", end)
	}

	nl, _ := fs.Resolve(Span{File: id, Start: 2, End: 2})
	if nl.Line != 1 {
		t.Errorf("newline byte should belong to line 1, got %+v", nl)
	}
}

func TestResolveIncludeRelativeToReferrer(t *testing.T) {
	got := ResolveInclude("/work/top/main.cir", `"models/nmos.lib"`)
	if got != "/work/top/models/nmos.lib" {
		t.Errorf("ResolveInclude = %q", got)
	}
	if got := ResolveInclude("/work/top/main.cir", "/abs/x.inc"); got != "/abs/x.inc" {
		t.Errorf("absolute include = %q", got)
	}
}

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(tmp, "other", "file.cir")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
