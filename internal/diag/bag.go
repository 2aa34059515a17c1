package diag

import (
	"cmp"
	"slices"
	"sync"

	"fortio.org/safecast"

	"netxlate/internal/source"
)

// Bag collects the diagnostics of one translation up to a limit. Workers of
// a batch never share a Bag, but the driver and the UI read it from
// different goroutines, so it locks.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   uint16
	// diagnostics refused by the limit; a refused error still fails the
	// translation
	dropped    int
	droppedErr bool
}

// NewBag keeps at most max diagnostics; larger values are capped.
func NewBag(max int) *Bag {
	m, err := safecast.Conv[uint16](max)
	if err != nil {
		m = ^uint16(0)
	}
	return &Bag{max: m}
}

// Add stores d unless the limit is reached, in which case it is counted
// and false returned.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) < int(b.max) {
		b.items = append(b.items, d)
		return true
	}
	b.dropped++
	b.droppedErr = b.droppedErr || d.Severity >= SevError
	return false
}

// AddAlways stores d past the limit. Reserved for the run summary
// (timings), which must survive a flood of warnings.
func (b *Bag) AddAlways(d Diagnostic) {
	b.mu.Lock()
	b.items = append(b.items, d)
	b.mu.Unlock()
}

func (b *Bag) Cap() uint16 { return b.max }

func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Bag) any(min Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= min })
}

// HasErrors reports an error, including one refused by the limit.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.droppedErr || b.any(SevError)
}

func (b *Bag) HasWarnings() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.any(SevWarning)
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns the stored diagnostics; callers must not modify them.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items
}

// Sort orders by file, offset, severity (errors first) and code.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

type dedupKey struct {
	code    Code
	primary source.Span
	msg     string
}

// Dedup drops repeats with the same code, primary span and message, as
// produced by an include file read from two places.
func (b *Bag) Dedup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := dedupKey{code: d.Code, primary: d.Primary, msg: d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
