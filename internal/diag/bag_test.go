package diag

import (
	"testing"

	"netxlate/internal/source"
)

func TestBagLimitKeepsErrorVisible(t *testing.T) {
	b := NewBag(1)
	r := BagReporter{Bag: b}

	ReportWarning(r, MapParamRemoved, source.Span{}, "first").Emit()
	ReportError(r, ScpNameConflict, source.Span{}, "second").Emit()

	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	if b.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", b.Dropped())
	}
	if !b.HasErrors() {
		t.Error("dropped error must still count for HasErrors")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevInfo, MapInfo, source.Span{Start: 10, End: 12}, "late"))
	b.Add(New(SevWarning, MapParamRemoved, source.Span{Start: 0, End: 4}, "early"))
	b.Add(New(SevWarning, MapParamRemoved, source.Span{Start: 0, End: 4}, "early"))

	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items after dedup", len(items))
	}
	if items[0].Message != "early" {
		t.Errorf("first item = %q", items[0].Message)
	}
}

func TestReportEmitsOnce(t *testing.T) {
	b := NewBag(10)
	rb := ReportInfo(BagReporter{Bag: b}, CtxFunctionCall, source.Span{}, "f(x)").
		WithNote(source.Span{}, "in X1")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("Len = %d", b.Len())
	}
	if n := len(b.Items()[0].Notes); n != 1 {
		t.Errorf("notes = %d", n)
	}
}

func TestCodeIDPrefixes(t *testing.T) {
	cases := map[Code]string{
		RdMalformedTernary:    "RD1002",
		ScpNameConflict:       "SCP2001",
		MapDeviceTypeNotFound: "MAP3001",
		IOMissingFile:         "IO4002",
		CtxFunctionCall:       "CTX5001",
		ObsTimings:            "OBS6001",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if got := ScpNameConflict.String(); got != "[SCP2001]: Name already used in scope" {
		t.Errorf("String() = %q", got)
	}
}

func TestFormatShortDiagnosticsLineRange(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	id := fs.Add("/workspace/net/top.cir", []byte("M1 d g s b n\n+ W=1u\nR1 1 0 1k\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     MapParamRemoved,
			Message:  "Param removed\nW",
			Primary:  source.Span{File: id, Start: 0, End: 19},
		},
		{
			Severity: SevError,
			Code:     ScpNameConflict,
			Message:  "R1 has already been used in this scope",
			Primary:  source.Span{File: id, Start: 20, End: 29},
		},
	}
	want := "warning MAP3003 net/top.cir:1-2 Param removed W\n" +
		"error SCP2001 net/top.cir:3 R1 has already been used in this scope"
	if got := FormatShortDiagnostics(diags, fs, false); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestOnceReporterFoldsRepeats(t *testing.T) {
	b := NewBag(10)
	once := NewOnceReporter(BagReporter{Bag: b})
	sp := source.Span{Start: 4, End: 9}

	for range 3 {
		ReportWarning(once, CtxEvaluation, sp, "cannot evaluate").Emit()
	}
	ReportWarning(once, CtxEvaluation, source.Span{Start: 20, End: 22}, "other").Emit()
	if b.Len() != 0 {
		t.Fatalf("reports must wait for Flush")
	}
	once.Flush()

	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Message != "cannot evaluate" || len(items[0].Notes) != 1 || items[0].Notes[0].Msg != "repeated in 2 more instantiation context(s)" {
		t.Errorf("first = %+v", items[0])
	}
	if len(items[1].Notes) != 0 {
		t.Errorf("single report got notes: %+v", items[1].Notes)
	}
	once.Flush()
	if b.Len() != 2 {
		t.Errorf("Flush must reset the reporter")
	}
}
