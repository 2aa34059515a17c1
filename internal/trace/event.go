package trace

import "time"

// Kind of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // instant, e.g. a cache hit
	KindHeartbeat // liveness, see StartHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is how much of the translation an event covers; smaller is
// coarser. Levels filter by scope.
type Scope uint8

const (
	// ScopeDriver covers a CLI command or a batch.
	ScopeDriver Scope = iota + 1
	// ScopeFile covers one netlist: top-level, include or library.
	ScopeFile
	// ScopePass covers one pass over a file (tokenize, normalize, build,
	// resolve, contexts, emit).
	ScopePass
	ScopeLine // one logical line, debug only
)

var scopeNames = [...]string{"unknown", "driver", "file", "pass", "line"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record. Tracers may overwrite Seq.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // 0 for points and heartbeats
	ParentID uint64
	GID      uint64 // goroutine, tells batch workers apart
	Name     string // "file:top.cir", "normalize", ...
	Detail   string
	Extra    map[string]string
}
