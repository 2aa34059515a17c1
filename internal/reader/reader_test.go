package reader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/scope"
	"netxlate/internal/stmt"
	"netxlate/internal/testkit"
	"netxlate/internal/token"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func newReader(t *testing.T, input string) (*Reader, *diag.Bag) {
	t.Helper()
	in, err := descriptor.Load(input)
	if err != nil {
		t.Fatalf("load %s: %v", input, err)
	}
	out, err := descriptor.Load("xyce")
	if err != nil {
		t.Fatalf("load xyce: %v", err)
	}
	bag := diag.NewBag(256)
	return New(nil, Options{Input: in, Output: out}, diag.BagReporter{Bag: bag}), bag
}

func device(t *testing.T, res *Result, name string) *stmt.Device {
	t.Helper()
	dev, ok := res.Session.GetObject(res.Session.Root(), scope.TagDevice, name).(*stmt.Device)
	if !ok {
		t.Fatalf("device %s not found", name)
	}
	return dev
}

func TestIncludeReadOnce(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "models.inc", ".MODEL dmod D IS=1e-14\n")
	top := write(t, dir, "top.sp", "* include twice\nD1 a 0 dmod\n.INC 'models.inc'\n.INC \"models.inc\"\n.END\n")

	r, _ := newReader(t, "hspice")
	res, err := r.Read(context.Background(), top)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("files = %v, want top and models.inc", res.Files)
	}
	if filepath.Base(res.Files[1]) != "models.inc" {
		t.Errorf("second file = %s", res.Files[1])
	}
	if d := device(t, res, "D1"); d.Model() == nil {
		t.Errorf("D1 read before its model must be resolved")
	}
}

func TestTopLevelIncludeMovesSubcircuitInclude(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "models.inc", ".MODEL dmod D IS=1e-14\n")
	top := write(t, dir, "top.sp", "* two scopes\n"+
		".SUBCKT sub a b\n.INC 'models.inc'\nR1 a b 1k\n.ENDS\n"+
		".INC 'models.inc'\nD1 a 0 dmod\n.END\n")

	r, bag := newReader(t, "hspice")
	res, err := r.Read(context.Background(), top)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("files = %v, want models.inc read once", res.Files)
	}
	if d := device(t, res, "D1"); d.Model() == nil {
		t.Errorf("D1 must see dmod from the top-level include")
	}
	for _, d := range bag.Items() {
		if d.Code == diag.ScpUnresolvedDevice || d.Code == diag.ScpUnresolvedReference {
			t.Errorf("unexpected diagnostic: %s", d.Message)
		}
	}
}

func TestSubcircuitIncludeStaysLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "models.inc", ".MODEL dmod D IS=1e-14\n")
	top := write(t, dir, "top.sp", "* local\n"+
		".SUBCKT sub a b\n.INC 'models.inc'\nD1 a b dmod\n.ENDS\n.END\n")

	r, _ := newReader(t, "hspice")
	res, err := r.Read(context.Background(), top)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	sess := res.Session
	if sess.LocalScopeContains(sess.Root(), scope.TagModel, "dmod") {
		t.Errorf("dmod leaked into the top scope")
	}
	sub := sess.GetChildScope(sess.Root(), "sub")
	if !sub.IsValid() || !sess.ScopeContains(sub, scope.TagModel, "dmod") {
		t.Errorf("dmod not visible inside sub")
	}
}

func TestMissingIncludeIsFatal(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "top.sp", "* missing\n.INC 'nowhere.inc'\n.END\n")

	r, _ := newReader(t, "hspice")
	if _, err := r.Read(context.Background(), top); !errors.Is(err, ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
}

func TestMissingTopLevelFile(t *testing.T) {
	r, _ := newReader(t, "hspice")
	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "absent.sp"))
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
}

func TestLibrarySectionSelected(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "corners.lib", ".LIB typ\n.MODEL dmod D IS=1e-14\n.ENDL typ\n.LIB fast\n.MODEL dmod D IS=2e-14\n.ENDL fast\n")
	top := write(t, dir, "top.sp", "* corners\n.LIB 'corners.lib' typ\nD1 a 0 dmod\n.END\n")

	r, _ := newReader(t, "hspice")
	res, err := r.Read(context.Background(), top)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	m := device(t, res, "D1").Model()
	if m == nil || len(m.Models) == 0 {
		t.Fatalf("D1 model = %v", m)
	}
	if got := m.Models[0].Params.Value("IS"); got != "1e-14" {
		t.Errorf("D1 uses IS=%s, want the typ section", got)
	}
	if got := res.Session.Scope(res.Session.Root()).LibSections(); len(got) != 1 || got[0] != "typ" {
		t.Errorf("selected sections = %v", got)
	}
}

func TestStrictModeRejectsUnknownModel(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "top.sp", "* strict\nD1 a 0 nomodel\n.END\n")

	r, _ := newReader(t, "hspice")
	r.opts.Strict = true
	if _, err := r.Read(context.Background(), top); !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("err = %v, want ErrUnresolvedReference", err)
	}
}

func TestGroundSynonymAddsPreprocess(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "top.sp", "* ground\nR1 a gnd 1k\n.END\n")

	r, bag := newReader(t, "hspice")
	res, err := r.Read(context.Background(), top)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	cmds := res.Session.CommandsOfType(".PREPROCESS")
	if len(cmds) != 1 {
		t.Fatalf(".PREPROCESS lines = %d", len(cmds))
	}
	if got := cmds[0].PropText(token.PreprocessKeyword); got != "REPLACEGROUND" {
		t.Errorf("keyword = %q", got)
	}
	if cmds[0].FirstLine() != 0 {
		t.Errorf("synthesized line must sort first, line %d", cmds[0].FirstLine())
	}
	found := false
	for _, d := range bag.Items() {
		found = found || d.Code == diag.MapInfo
	}
	if !found {
		t.Errorf("ground replacement must be reported")
	}
}

func TestTracedCallsRewritten(t *testing.T) {
	dir := t.TempDir()
	top := write(t, dir, "top.sp", `* traced
.FUNC twice(x) 'x*2'
.SUBCKT cell a b w=1
.PARAM g='twice(w)'
R1 a b g
.ENDS cell
X1 n1 n2 cell w=3
.END
`)
	r, _ := newReader(t, "hspice")
	r.opts.TraceContexts = true
	res, err := r.Read(context.Background(), top)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Contexts) != 2 {
		t.Fatalf("contexts = %d, want global plus X1", len(res.Contexts))
	}
	x1 := device(t, res, "X1")
	pl, _ := x1.Prop(token.Params).(stmt.ParamList)
	if v, ok := pl.Get("FN_G_1"); !ok || v != "6" {
		t.Errorf("X1 params = %v", pl)
	}
}

func TestStatementInvariants(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "models.inc", "* models\n.MODEL nch NMOS LEVEL=54\n.MODEL dmod D IS=1e-14\n")
	top := write(t, dir, "top.sp", `* invariants
.INC 'models.inc'
.PARAM w=2
.SUBCKT inv in out
M1 out in gnd gnd nch W='w*1u'
.ENDS inv
X1 a
+ b inv
D1 b 0 dmod
.OPTIONS GMIN=1e-12
.TEMP 50
.TRAN 1n 10n
.PRINT TRAN V(a) V(b)
.END
`)
	r, _ := newReader(t, "hspice")
	res, err := r.Read(context.Background(), top)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := testkit.CheckStatementInvariants(res.FileSet, res.Session, res.Files); err != nil {
		t.Error(err)
	}
}
