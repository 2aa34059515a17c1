package writer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/reader"
)

type fixture struct {
	t   *testing.T
	dir string
	out *descriptor.Language
	bag *diag.Bag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	out, err := descriptor.Load("xyce")
	if err != nil {
		t.Fatalf("load xyce: %v", err)
	}
	return &fixture{t: t, dir: t.TempDir(), out: out, bag: diag.NewBag(256)}
}

func (x *fixture) file(name, content string) string {
	x.t.Helper()
	p := filepath.Join(x.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		x.t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		x.t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func (x *fixture) read(top string) *reader.Result {
	x.t.Helper()
	in, err := descriptor.Load("hspice")
	if err != nil {
		x.t.Fatalf("load hspice: %v", err)
	}
	r := reader.New(nil, reader.Options{Input: in, Output: x.out}, diag.BagReporter{Bag: x.bag})
	res, err := r.Read(context.Background(), top)
	if err != nil {
		x.t.Fatalf("read: %v", err)
	}
	return res
}

func (x *fixture) render(text string, opts Options) string {
	x.t.Helper()
	res := x.read(x.file("top.sp", text))
	w := New(res, x.out, opts, diag.BagReporter{Bag: x.bag})
	return w.Render(res.Top)
}

func (x *fixture) hasCode(code diag.Code) bool {
	for _, d := range x.bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func count(text, sub string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.HasPrefix(l, sub) {
			n++
		}
	}
	return n
}

func TestOptionsMergedPerPackage(t *testing.T) {
	x := newFixture(t)
	got := x.render("* options\n.OPTIONS GMIN=1e-12\n.TEMP 50\n.END\n", Options{})
	if n := count(got, ".OPTIONS DEVICE"); n != 1 {
		t.Fatalf("DEVICE option lines = %d in\n%s", n, got)
	}
	if !strings.Contains(got, "GMIN=1e-12") || !strings.Contains(got, "TEMP=50") {
		t.Errorf("merged options lost a parameter:\n%s", got)
	}
}

func TestMergeLeavesSessionUntouched(t *testing.T) {
	x := newFixture(t)
	res := x.read(x.file("top.sp", "* options\n.OPTIONS GMIN=1e-12\n.TEMP 50\n.END\n"))
	w := New(res, x.out, Options{}, nil)
	first := w.Render(res.Top)
	if second := w.Render(res.Top); second != first {
		t.Errorf("rendering twice differs:\n%s\n---\n%s", first, second)
	}
}

func TestPrintCombined(t *testing.T) {
	x := newFixture(t)
	text := "* prints\n.TRAN 1n 10n\n.PRINT TRAN V(a)\n.PRINT TRAN V(b) v(A)\n.END\n"

	got := x.render(text, Options{})
	if n := count(got, ".PRINT"); n != 2 {
		t.Errorf("without combining, .PRINT lines = %d", n)
	}

	x = newFixture(t)
	got = x.render(text, Options{CombinePrint: true})
	if n := count(got, ".PRINT"); n != 1 {
		t.Fatalf("combined .PRINT lines = %d in\n%s", n, got)
	}
	if !strings.Contains(got, ".PRINT TRAN V(a) V(b)") || strings.Contains(got, "v(A)") {
		t.Errorf("combined line:\n%s", got)
	}
}

func TestUnsupportedOutputVariableCommented(t *testing.T) {
	x := newFixture(t)
	got := x.render("* outputs\n.TRAN 1n 10n\n.PRINT TRAN VX(out)\n.END\n", Options{})
	if count(got, ".PRINT") != 0 {
		t.Errorf("unsupported .PRINT must not be written as a statement:\n%s", got)
	}
	if !strings.Contains(got, "* .PRINT TRAN VX(out)") {
		t.Errorf("unsupported .PRINT must be kept as a comment:\n%s", got)
	}
	if !x.hasCode(diag.MapUnsupportedOutputVars) {
		t.Errorf("missing unsupported output warning")
	}
}

func TestNonASCIIStripped(t *testing.T) {
	x := newFixture(t)
	got := x.render("* amp\n* résistance\nR1 a 0 1k\n.END\n", Options{})
	if !strings.Contains(got, "rsistance") {
		t.Errorf("comment lost:\n%s", got)
	}
	for _, r := range got {
		if r > 0x7f {
			t.Fatalf("non-ASCII rune %q left in output", r)
		}
	}
	if !x.hasCode(diag.IONonASCII) {
		t.Errorf("stripping must be reported")
	}
}

func TestTitleWrittenFirst(t *testing.T) {
	x := newFixture(t)
	got := x.render("* ground test\nR1 a gnd 1k\n.END\n", Options{})
	lines := strings.Split(got, "\n")
	if lines[0] != "* ground test" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(got, ".PREPROCESS REPLACEGROUND TRUE") {
		t.Errorf("missing ground replacement:\n%s", got)
	}
}

func TestStripNonASCII(t *testing.T) {
	if out, ok := stripNonASCII("plain"); ok || out != "plain" {
		t.Errorf("ascii input changed: %q %v", out, ok)
	}
	if out, ok := stripNonASCII("µA über"); !ok || out != "A ber" {
		t.Errorf("stripped = %q %v", out, ok)
	}
}

func TestWriteAllKeepsIncludeLayout(t *testing.T) {
	x := newFixture(t)
	x.file("sub/models.inc", "* models\n.MODEL dmod D IS=1e-14\n")
	top := x.file("top.sp", "* top\n.INC 'sub/models.inc'\nD1 a 0 dmod\n.END\n")
	res := x.read(top)

	outDir := filepath.Join(t.TempDir(), "out")
	w := New(res, x.out, Options{Output: filepath.Join(outDir, "top.cir"), Jobs: 2}, diag.BagReporter{Bag: x.bag})
	if err := w.WriteAll(context.Background()); err != nil {
		t.Fatalf("write: %v", err)
	}

	outs := w.Outputs()
	if len(outs) != 2 || outs[1] != filepath.Join(outDir, "sub", "models.inc") {
		t.Fatalf("outputs = %v", outs)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "top.cir"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "sub/models.inc") {
		t.Errorf("include reference not kept:\n%s", data)
	}
	inc, err := os.ReadFile(outs[1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(inc), ".MODEL dmod D") {
		t.Errorf("included file:\n%s", inc)
	}
}

func TestDefaultOutput(t *testing.T) {
	out, err := descriptor.Load("xyce")
	if err != nil {
		t.Fatal(err)
	}
	got := DefaultOutput(filepath.Join("nets", "amp.sp"), out)
	if want := filepath.Join("nets", "amp_xyce.cir"); got != want {
		t.Errorf("DefaultOutput = %q, want %q", got, want)
	}
}
