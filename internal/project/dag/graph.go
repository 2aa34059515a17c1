package dag

import (
	"slices"
)

// Node is one translated top-level netlist and the files it read.
type Node struct {
	Path     string
	Includes []string
}

type Graph struct {
	Edges   [][]FileID // Edges[from] = []to, from includes to
	Rev     [][]FileID // Rev[to] = []from
	Present []bool     // файл был переведён как верхний уровень
}

func BuildGraph(idx Index, nodes []Node) Graph {
	n := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]FileID, n),
		Rev:     make([][]FileID, n),
		Present: make([]bool, n),
	}
	for _, node := range nodes {
		from, ok := idx.NameToID[node.Path]
		if !ok {
			continue
		}
		g.Present[from] = true
		for _, inc := range node.Includes {
			to, ok := idx.NameToID[inc]
			if !ok || to == from || slices.Contains(g.Edges[from], to) {
				continue
			}
			g.Edges[from] = append(g.Edges[from], to)
			g.Rev[to] = append(g.Rev[to], from)
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
		slices.Sort(g.Rev[i])
	}
	return g
}

// Affected returns the top-level netlists that read any of changed,
// sorted. A changed top-level netlist affects itself.
func Affected(idx Index, g Graph, changed []string) []string {
	seen := make([]bool, len(idx.IDToName))
	var queue []FileID
	for _, c := range changed {
		if id, ok := idx.NameToID[c]; ok && !seen[id] {
			seen[id] = true
			queue = append(queue, id)
		}
	}
	var out []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if g.Present[id] {
			out = append(out, idx.IDToName[id])
		}
		for _, from := range g.Rev[id] {
			if !seen[from] {
				seen[from] = true
				queue = append(queue, from)
			}
		}
	}
	slices.Sort(out)
	return out
}
