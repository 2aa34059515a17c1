package observ

import (
	"strings"
	"testing"
)

func TestReportAggregatesByName(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("normalize")
	tm.End(a, "")
	b := tm.Begin("build")
	tm.End(b, "12 statements")
	c := tm.Begin("normalize")
	tm.End(c, "")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[0].Name != "normalize" || r.Phases[0].Runs != 2 || r.Phases[1].Note != "12 statements" {
		t.Errorf("unexpected report %+v", r.Phases)
	}
	if !strings.Contains(tm.Summary(), "total") {
		t.Error("summary lacks total line")
	}
	if r.WallMS < 0 {
		t.Errorf("wall = %v", r.WallMS)
	}
}

func TestNilTimerIsSafe(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Error("nil timer should report nothing")
	}
}
