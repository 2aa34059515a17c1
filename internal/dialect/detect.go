package dialect

import (
	"netxlate/internal/source"
)

const (
	// minScore is the smallest winning score accepted as a detection.
	minScore = 3
	// minConfidence is the smallest share of the total score the winner
	// must hold.
	minConfidence = 0.5
)

// Collect gathers the evidence of every logical line of a loaded file.
func Collect(fs *source.FileSet, id source.FileID) *Evidence {
	e := NewEvidence()
	for _, ll := range fs.LogicalLines(id) {
		// the first line of a netlist is its title
		if ll.IsComment() || ll.First() == 1 {
			continue
		}
		ObserveLine(e, ll.Text, ll.Span)
	}
	return e
}

// Detect classifies a loaded file. The returned kind is Unknown when the
// evidence is too weak or split between dialects.
func Detect(fs *source.FileSet, id source.FileID) (Kind, Classification) {
	c := Classifier{}.Classify(Collect(fs, id))
	if c.Score < minScore || c.Confidence < minConfidence {
		return Unknown, c
	}
	return c.Kind, c
}
