package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopeFile) || LevelPhase.ShouldEmit(ScopePass) {
		t.Error("phase level should stop at file scope")
	}
	if !LevelDetail.ShouldEmit(ScopePass) || LevelDetail.ShouldEmit(ScopeLine) {
		t.Error("detail level should stop at pass scope")
	}
	if !LevelDebug.ShouldEmit(ScopeLine) {
		t.Error("debug level should emit everything")
	}
	if _, err := ParseLevel("PHASE"); err != nil {
		t.Errorf("ParseLevel is case-insensitive: %v", err)
	}
}

func TestStreamTracerSpanText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	file := Begin(tr, ScopeFile, "file:top.cir", 0)
	pass := Begin(tr, ScopePass, "normalize", file.ID())
	pass.WithExtra("lines", "12").End("")
	Begin(tr, ScopeLine, "line:3", pass.ID()).End("")
	file.End("ok")

	out := buf.String()
	for _, want := range []string{"→ file:top.cir", "← normalize {lines=12}", "← file:top.cir (ok)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "line:3") {
		t.Errorf("line scope must be filtered at detail level:\n%s", out)
	}
}

func TestRingTracerWrapsInOrder(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopePass, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("missing tracer should yield Nop")
	}
	r := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Error("tracer not propagated")
	}
}

func TestWithSpanParentsNestedSpans(t *testing.T) {
	r := NewRingTracer(8, LevelDetail)
	ctx := WithTracer(context.Background(), r)
	outer := Begin(FromContext(ctx), ScopeFile, "file:top.cir", 0)
	ctx = WithSpan(ctx, outer)
	inner := Begin(FromContext(ctx), ScopePass, "resolve", CurrentSpan(ctx).SpanID)
	inner.End("")
	inner.End("again")
	outer.End("")

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("events = %d, want 4 (second End must be ignored)", len(snap))
	}
	if snap[1].ParentID != outer.ID() {
		t.Errorf("inner parent = %d, want %d", snap[1].ParentID, outer.ID())
	}
	if got := WithSpan(ctx, Begin(Nop, ScopeFile, "x", 0)); got != ctx {
		t.Errorf("inert span must not change the context")
	}
}

func TestHeartbeatNamesOpenSpan(t *testing.T) {
	r := NewRingTracer(8, LevelDetail)
	s := Begin(r, ScopeFile, "file:stuck.inc", 0)
	defer s.End("")

	ev := heartbeatEvent(time.Now(), 3)
	if !strings.HasPrefix(ev.Detail, "#3 open=") || !strings.HasSuffix(ev.Detail, "in file:stuck.inc") {
		t.Errorf("heartbeat detail = %q", ev.Detail)
	}
	// Stop on a disabled heartbeat is a no-op
	StartHeartbeat(Nop, time.Second).Stop()
}

func TestRingOfAndErrorLevel(t *testing.T) {
	tr, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &bytes.Buffer{}, RingSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	ring := RingOf(tr)
	if ring == nil {
		t.Fatal("both mode must keep a ring")
	}
	if !ring.Level().ShouldEmit(ScopePass) {
		t.Errorf("error level ring must record passes")
	}
	if RingOf(Nop) != nil {
		t.Errorf("nop tracer has no ring")
	}
	if m, err := ParseMode("Both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode(Both) = %v, %v", m, err)
	}
}

func TestNDJSONFormat(t *testing.T) {
	ev := &Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeFile, Name: "cache", Detail: "hit top.sp"}
	out := string(FormatEvent(ev, FormatNDJSON))
	if !strings.HasSuffix(out, "\n") || !strings.Contains(out, `"kind":"point"`) || !strings.Contains(out, `"detail":"hit top.sp"`) {
		t.Errorf("ndjson = %s", out)
	}
	if f, _ := ParseFormat("json"); f != FormatNDJSON {
		t.Errorf("json is an alias of ndjson")
	}
}
