package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"netxlate/internal/cache"
	"netxlate/internal/dialect"
	"netxlate/internal/diag"
	"netxlate/internal/observ"
	"netxlate/internal/reader"
	"netxlate/internal/source"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestTranslateWritesOutput(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "amp.sp", "* amp\nR1 a 0 1k\n.END\n")
	out := t.TempDir()

	res, err := Translate(context.Background(), top, Options{Input: "hspice", Output: "xyce", OutDir: out})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Input != "hspice" || res.Output != "xyce" {
		t.Errorf("dialects = %s -> %s", res.Input, res.Output)
	}
	want := filepath.Join(out, "amp_xyce.cir")
	if len(res.Outputs) != 1 || res.Outputs[0] != want {
		t.Fatalf("outputs = %v, want %s", res.Outputs, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "* amp\n") {
		t.Errorf("translation:\n%s", data)
	}
}

func TestTranslateDetectsDialect(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "amp.sp", "* amp\nR1 a 0 1k $ load\n.END\n")

	res, err := Translate(context.Background(), top, Options{Input: AutoInput, Output: "xyce", NoWrite: true})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Detection == nil || res.Detection.Kind != dialect.HSpice {
		t.Fatalf("detection = %+v", res.Detection)
	}
	if res.Input != "hspice" {
		t.Errorf("input = %s", res.Input)
	}
	if len(res.Outputs) != 0 {
		t.Errorf("NoWrite wrote %v", res.Outputs)
	}
	if _, err := os.Stat(filepath.Join(dir, "amp_xyce.cir")); !os.IsNotExist(err) {
		t.Errorf("NoWrite left an output file: %v", err)
	}
}

func TestUndetectedDialectFallsBack(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "plain.sp", "* plain\nR1 a 0 1k\n.END\n")

	res, err := Translate(context.Background(), top, Options{Output: "xyce", NoWrite: true})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Input != FallbackInput {
		t.Errorf("input = %s, want %s", res.Input, FallbackInput)
	}
	warned := false
	for _, d := range res.Bag.Items() {
		warned = warned || (d.Code == diag.RdDialectSwitch && d.Severity == diag.SevWarning)
	}
	if !warned {
		t.Errorf("fallback must be reported")
	}
}

func TestSameDialectRejected(t *testing.T) {
	top := write(t, t.TempDir(), "amp.cir", "* amp\nR1 a 0 1k\n.END\n")
	_, err := Translate(context.Background(), top, Options{Input: "xyce", Output: "xyce"})
	if !errors.Is(err, ErrSameDialect) {
		t.Fatalf("err = %v, want ErrSameDialect", err)
	}
}

func TestMissingInput(t *testing.T) {
	_, err := Translate(context.Background(), filepath.Join(t.TempDir(), "absent.sp"), Options{Input: "hspice", Output: "xyce"})
	if !errors.Is(err, reader.ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
}

func TestCacheReplaysTranslation(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "amp.sp", "* amp\n.OPTIONS GMIN=1e-12\nR1 a 0 1k\n.END\n")
	opts := Options{Input: "hspice", Output: "xyce", Cache: cache.New(nil)}

	first, err := Translate(context.Background(), top, opts)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Cached {
		t.Fatalf("first run cannot be cached")
	}
	want, err := os.ReadFile(first.Outputs[0])
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(first.Outputs[0]); err != nil {
		t.Fatal(err)
	}

	second, err := Translate(context.Background(), top, opts)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.Cached {
		t.Fatalf("unchanged netlist must be served from the cache")
	}
	if second.Bag.Len() != first.Bag.Len() {
		t.Errorf("replayed %d diagnostics, want %d", second.Bag.Len(), first.Bag.Len())
	}
	got, err := os.ReadFile(second.Outputs[0])
	if err != nil {
		t.Fatalf("cached output not restored: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("cached output differs:\n%s\n---\n%s", got, want)
	}

	write(t, dir, "amp.sp", "* amp\nR1 a 0 2k\n.END\n")
	third, err := Translate(context.Background(), top, opts)
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if third.Cached {
		t.Errorf("edited netlist must be read again")
	}
}

func TestTranslateAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		write(t, dir, "a.sp", "* a\nR1 a 0 1k\n.END\n"),
		write(t, dir, "b.sp", "* b\n.INC 'missing.inc'\n.END\n"),
		write(t, dir, "c.sp", "* c\nR1 c 0 1k\n.END\n"),
	}
	timer := observ.NewTimer()
	results, err := TranslateAll(context.Background(), paths, Options{
		Input:      "hspice",
		Output:     "xyce",
		OutputPath: filepath.Join(dir, "ignored.cir"),
		Jobs:       2,
		Timer:      timer,
	})
	if err != nil {
		t.Fatalf("translate all: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("result %d is %s, want %s", i, res.Path, paths[i])
		}
	}
	if !results[1].Failed() || results[0].Failed() || results[2].Failed() {
		t.Errorf("only b.sp must fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "ignored.cir")); !os.IsNotExist(err) {
		t.Errorf("a shared output path must not be used for several files")
	}
	if len(timer.Report().Phases) == 0 {
		t.Errorf("timer recorded no phases")
	}
}

func TestTokenize(t *testing.T) {
	top := write(t, t.TempDir(), "amp.sp", "* amp\nR1 a 0\n+ 1k\n.END\n")
	res, err := Tokenize(top, "hspice", 16)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(res.Lines) != 3 {
		t.Fatalf("lines = %d, want title, R1 and .END", len(res.Lines))
	}
	if got := res.Lines[1].Raw; !strings.Contains(got, "1k") {
		t.Errorf("continuation not joined: %q", got)
	}
}

func TestAppendTimings(t *testing.T) {
	timer := observ.NewTimer()
	timer.End(timer.Begin("read"), "")
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.RdInfo, source.Span{}, "filler"))
	AppendTimings(bag, timer, "amp.sp")
	items := bag.Items()
	last := items[len(items)-1]
	if last.Code != diag.ObsTimings || len(last.Notes) != 1 || !strings.Contains(last.Notes[0].Msg, `"read"`) {
		t.Errorf("timings diagnostic = %+v", last)
	}
}
