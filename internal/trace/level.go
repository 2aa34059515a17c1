package trace

import (
	"fmt"
	"strings"
)

// Level controls how fine-grained the emitted scopes are.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing live; the ring is dumped on failure
	LevelPhase        // driver and file spans
	LevelDetail       // plus translation passes
	LevelDebug        // plus single logical lines
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest scope each level lets through; 0 lets nothing through
var levelScope = [...]Scope{0, 0, ScopeFile, ScopePass, ScopeLine}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the level names in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScope) {
		return false
	}
	return scope != 0 && scope <= levelScope[l]
}
