package ui

import (
	"strings"
	"testing"
)

func TestEventsMoveRows(t *testing.T) {
	events := make(chan Event)
	m := NewProgressModel("translate", []string{"a.sp", "b.sp"}, events).(*progressModel)

	m.applyEvent(Event{File: "a.sp", Stage: StageResolve, Status: StatusWorking})
	if got := m.rows[0].label(); got != "resolving" {
		t.Errorf("status = %q", got)
	}
	if got := m.percent(); got != 0.25 {
		t.Errorf("percent = %v, want 0.25", got)
	}

	m.applyEvent(Event{File: "a.sp", Status: StatusDone})
	m.applyEvent(Event{File: "b.sp", Status: StatusCached})
	if got := m.percent(); got != 1 {
		t.Errorf("percent = %v, want 1", got)
	}

	m.applyEvent(Event{File: "unknown.sp", Stage: StageRead, Status: StatusWorking})
	m.applyEvent(Event{Stage: StageWrite, Status: StatusWorking})
	if m.runLabel != "writing" {
		t.Errorf("run label = %q", m.runLabel)
	}
	if v := m.View(); !strings.Contains(v, "a.sp") || !strings.Contains(v, "cached") || !strings.Contains(v, "2/2") {
		t.Errorf("view:\n%s", v)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("netlists/amplifier.sp", 10); got != "netlist..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a.sp", 10); got != "a.sp" {
		t.Errorf("short value changed: %q", got)
	}
}

func TestFailedFilesCounted(t *testing.T) {
	m := NewProgressModel("check", []string{"a.sp", "b.sp", "c.sp"}, nil).(*progressModel)
	m.applyEvent(Event{File: "a.sp", Stage: StageRead, Status: StatusError})
	m.applyEvent(Event{File: "b.sp", Stage: StageRead, Status: StatusQueued})
	if finished, failed := m.counts(); finished != 1 || failed != 1 {
		t.Errorf("counts = %d, %d", finished, failed)
	}
	if !strings.Contains(m.View(), "1/3, 1 failed") {
		t.Errorf("view:\n%s", m.View())
	}
}
