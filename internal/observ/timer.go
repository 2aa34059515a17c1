// Package observ measures how long the translation phases take.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one timed run of a named phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases. A batch shares one Timer between its workers.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{} }

// Begin starts the phase name and returns a handle for End. A nil Timer
// returns -1.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	idx := len(t.phases) - 1
	t.mu.Unlock()
	return idx
}

// End stops the phase begun as idx; unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx >= 0 && idx < len(t.phases) {
		t.phases[idx].Dur = time.Since(t.phases[idx].Start)
		t.phases[idx].Note = note
	}
}

// PhaseReport sums the runs of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the JSON shape of a Timer. TotalMS sums all phases, so it can
// exceed WallMS when files were translated in parallel.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	WallMS  float64       `json:"wall_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report merges the runs of each phase name, in first-seen order, so a
// batch shows one line per phase rather than one per file. The note of the
// first run is kept.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var r Report
	pos := make(map[string]int)
	var first, last time.Time
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		if first.IsZero() || p.Start.Before(first) {
			first = p.Start
		}
		if end := p.Start.Add(p.Dur); end.After(last) {
			last = end
		}
		i, ok := pos[p.Name]
		if !ok {
			i = len(r.Phases)
			pos[p.Name] = i
			r.Phases = append(r.Phases, PhaseReport{Name: p.Name, Note: p.Note})
		}
		pr := &r.Phases[i]
		pr.Runs++
		pr.DurationMS += millis(p.Dur)
	}
	r.TotalMS = millis(total)
	r.WallMS = millis(last.Sub(first))
	return r
}

// Summary renders Report as the table printed by --timings.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-20s %4dx %10.2f ms", p.Name, p.Runs, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %5s %10.2f ms (wall %.2f ms)\n", "total", "", r.TotalMS, r.WallMS)
	return sb.String()
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
