package dag

import (
	"slices"
	"testing"
)

func TestBuildIndexIncludesIncludes(t *testing.T) {
	idx := BuildIndex([]Node{
		{Path: "/n/top.sp", Includes: []string{"/n/models.inc", "/n/sub.inc"}},
		{Path: "/n/sub.inc"},
	})
	want := []string{"/n/models.inc", "/n/sub.inc", "/n/top.sp"}
	if !slices.Equal(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id, ok := idx.NameToID[name]; !ok || int(id) != i {
			t.Errorf("NameToID[%q] = %v", name, id)
		}
	}
}

func TestAffected(t *testing.T) {
	nodes := []Node{
		{Path: "/n/amp.sp", Includes: []string{"/n/amp.sp", "/n/models.inc"}},
		{Path: "/n/osc.sp", Includes: []string{"/n/osc.sp", "/n/models.inc", "/n/osc.lib"}},
		{Path: "/n/bias.sp", Includes: []string{"/n/bias.sp"}},
	}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes)

	tests := []struct {
		changed []string
		want    []string
	}{
		{[]string{"/n/models.inc"}, []string{"/n/amp.sp", "/n/osc.sp"}},
		{[]string{"/n/osc.lib"}, []string{"/n/osc.sp"}},
		{[]string{"/n/bias.sp"}, []string{"/n/bias.sp"}},
		{[]string{"/n/unrelated.inc"}, nil},
		{[]string{"/n/osc.lib", "/n/bias.sp"}, []string{"/n/bias.sp", "/n/osc.sp"}},
	}
	for _, tt := range tests {
		if got := Affected(idx, g, tt.changed); !slices.Equal(got, tt.want) {
			t.Errorf("Affected(%v) = %v, want %v", tt.changed, got, tt.want)
		}
	}
}

func TestSelfEdgesDropped(t *testing.T) {
	nodes := []Node{{Path: "a", Includes: []string{"a", "b", "b"}}}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes)
	if got := g.Edges[idx.NameToID["a"]]; len(got) != 1 {
		t.Errorf("edges of a = %v", got)
	}
}
