package trace

import (
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID, never 0.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// goid reads the current goroutine number from the stack header
// "goroutine N [running]:".
func goid() uint64 {
	var buf [64]byte
	s := buf[:runtime.Stack(buf[:], false)]
	const prefix = "goroutine "
	if len(s) <= len(prefix) || string(s[:len(prefix)]) != prefix {
		return 0
	}
	s = s[len(prefix):]
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	id, err := strconv.ParseUint(string(s[:n]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// openSpans tracks spans that have begun and not yet ended, so the
// heartbeat can name the file or pass a stuck translation sits in.
var openSpans struct {
	sync.Mutex
	byID map[uint64]*Span
}

func trackOpen(s *Span) {
	openSpans.Lock()
	if openSpans.byID == nil {
		openSpans.byID = make(map[uint64]*Span)
	}
	openSpans.byID[s.id] = s
	openSpans.Unlock()
}

func trackClosed(s *Span) {
	openSpans.Lock()
	delete(openSpans.byID, s.id)
	openSpans.Unlock()
}

// Inflight reports the number of open spans and the name of the most
// recently begun one. Recent spans are the innermost, which is where a hang
// shows up.
func Inflight() (int, string) {
	openSpans.Lock()
	defer openSpans.Unlock()
	var newest *Span
	for _, s := range openSpans.byID {
		if newest == nil || s.id > newest.id {
			newest = s
		}
	}
	if newest == nil {
		return 0, ""
	}
	return len(openSpans.byID), newest.name
}

// Span is one begun operation; End closes it. A Span from a disabled tracer
// is inert and all its methods are no-ops.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	gid      uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
	ended    atomic.Bool
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}
	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		gid:      goid(),
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	trackOpen(s)
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End closes the span and returns its duration. Only the first call emits.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 || !s.ended.CompareAndSwap(false, true) {
		return 0
	}
	trackClosed(s)
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under parent, e.g. a cache hit or a dialect
// switch in the middle of a file.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      goid(),
		Name:     name,
		Detail:   detail,
	})
}
