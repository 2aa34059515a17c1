// Package dag records which netlist files include which, so a change to an
// included file can be traced back to the top-level netlists it affects.
package dag

import (
	"sort"
)

type FileID uint32

type Index struct {
	NameToID map[string]FileID
	IDToName []string
}

// собрать уникальные пути, sort.Strings, раздать ID по порядку
func BuildIndex(nodes []Node) Index {
	uniq := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.Path != "" {
			uniq[n.Path] = struct{}{}
		}
		for _, inc := range n.Includes {
			if inc != "" {
				uniq[inc] = struct{}{}
			}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	nameToID := make(map[string]FileID, len(paths))
	for i, path := range paths {
		nameToID[path] = FileID(i)
	}
	return Index{NameToID: nameToID, IDToName: paths}
}
