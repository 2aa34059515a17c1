package trace

import (
	"context"
	"fmt"
	"time"
)

// Heartbeat emits a liveness event every interval. Each beat names the
// innermost open span, so a translation stuck in one include shows the same
// name beat after beat.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat starts beating into tracer. It returns nil when tracing is
// off or interval is not positive; Stop on nil is safe.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.beat(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) beat(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tracer.Emit(heartbeatEvent(now, n))
		}
	}
}

func heartbeatEvent(now time.Time, n int) *Event {
	open, newest := Inflight()
	detail := fmt.Sprintf("#%d open=%d", n, open)
	if newest != "" {
		detail += " in " + newest
	}
	return &Event{
		Time:   now,
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		GID:    goid(),
		Name:   "heartbeat",
		Detail: detail,
	}
}

// Stop ends the beat loop and waits for it. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
