package dialect

import (
	"cmp"
	"slices"

	"netxlate/internal/source"
)

// Hint is one observation pointing at a dialect, e.g. a `$` comment for
// HSPICE or `.OPTIONS NONLIN` for Xyce.
type Hint struct {
	Dialect Kind
	Score   int
	Reason  string
	Span    source.Span
}

// Evidence accumulates hints for one file.
type Evidence struct {
	hints  []Hint
	scores [kindCount]int
}

func NewEvidence() *Evidence { return &Evidence{} }

// Add records h. Hints for Unknown or with a non-positive score still count
// as observed signals but move no score.
func (e *Evidence) Add(h Hint) {
	if e == nil {
		return
	}
	e.hints = append(e.hints, h)
	if h.Score > 0 && h.Dialect > Unknown && h.Dialect < kindCount {
		e.scores[h.Dialect] += h.Score
	}
}

func (e *Evidence) Hints() []Hint {
	if e == nil {
		return nil
	}
	return e.hints
}

// Classification ranks the dialects by accumulated score.
type Classification struct {
	Kind            Kind
	Score           int
	TotalScore      int
	Confidence      float64 // Score / TotalScore
	RunnerUp        Kind
	RunnerUpScore   int
	ObservedSignals int
	// Reasons of the winner's strongest hints, strongest first.
	Reasons []string
}

// Classifier turns Evidence into a Classification. It applies no
// threshold; Detect does.
type Classifier struct{}

const maxReasons = 3

func (Classifier) Classify(e *Evidence) Classification {
	if e == nil || len(e.hints) == 0 {
		return Classification{Kind: Unknown}
	}
	c := Classification{ObservedSignals: len(e.hints)}

	ranked := make([]Kind, 0, kindCount-1)
	for k := HSpice; k < kindCount; k++ {
		if e.scores[k] > 0 {
			ranked = append(ranked, k)
		}
		c.TotalScore += e.scores[k]
	}
	// ties go to the earlier kind
	slices.SortStableFunc(ranked, func(a, b Kind) int { return cmp.Compare(e.scores[b], e.scores[a]) })
	if len(ranked) > 0 {
		c.Kind, c.Score = ranked[0], e.scores[ranked[0]]
		c.Confidence = float64(c.Score) / float64(c.TotalScore)
	}
	if len(ranked) > 1 {
		c.RunnerUp, c.RunnerUpScore = ranked[1], e.scores[ranked[1]]
	}
	c.Reasons = e.reasons(c.Kind)
	return c
}

func (e *Evidence) reasons(k Kind) []string {
	if k == Unknown {
		return nil
	}
	var own []Hint
	for _, h := range e.hints {
		if h.Dialect == k && h.Score > 0 && h.Reason != "" {
			own = append(own, h)
		}
	}
	slices.SortStableFunc(own, func(a, b Hint) int { return cmp.Compare(b.Score, a.Score) })
	var out []string
	for _, h := range own {
		if !slices.Contains(out, h.Reason) {
			out = append(out, h.Reason)
		}
		if len(out) == maxReasons {
			break
		}
	}
	return out
}
