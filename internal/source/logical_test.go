package source

import (
	"slices"
	"testing"
)

func TestLogicalLinesJoinsContinuations(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("c.cir", []byte(`title line
M1 d g s b nch
+ W=1u
* interrupting comment
+ L=2u

R1 1 0 1k
`))

	lines := fs.LogicalLines(id)
	if len(lines) != 4 {
		t.Fatalf("got %d logical lines, want 4: %#v", len(lines), lines)
	}
	if lines[1].Text != "M1 d g s b nch W=1u L=2u" {
		t.Errorf("joined text = %q", lines[1].Text)
	}
	if !slices.Equal(lines[1].Lines, []uint32{2, 3, 5}) {
		t.Errorf("line numbers = %v", lines[1].Lines)
	}
	if !lines[2].IsComment() || lines[2].First() != 4 {
		t.Errorf("comment should follow the statement it interrupted, got %+v", lines[2])
	}
	if lines[3].Text != "R1 1 0 1k" || lines[3].First() != 7 {
		t.Errorf("last line = %+v", lines[3])
	}
}

func TestLogicalLinesSpanCoversJoinedLines(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("s.cir", []byte("V1 1 0\n+ DC 5\n"))
	lines := fs.LogicalLines(id)
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	start, end := fs.Resolve(lines[0].Span)
	if start.Line != 1 || end.Line != 2 {
		t.Errorf("span lines %d..%d, want 1..2", start.Line, end.Line)
	}
}
