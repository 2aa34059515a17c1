package scope

import (
	"fmt"
	"slices"

	"golang.org/x/text/cases"

	"netxlate/internal/diag"
	"netxlate/internal/source"
)

// warnedTags are the name classes checked by WarnCaseSensitivity.
var warnedTags = []Tag{TagDevice, TagENode, TagModel, TagSubckt}

// WarnCaseSensitivity reports names that differ only by case within one
// scope, once per name class, for every scope of the tree. Output is not
// changed; a case-insensitive reader of the result would see duplicates.
func (s *Session) WarnCaseSensitivity() {
	s.warnCase(RootScopeID, cases.Fold())
}

func (s *Session) warnCase(id ScopeID, fold cases.Caser) {
	sc := s.scopes.get(id)
	if sc == nil {
		return
	}
	for _, tag := range warnedTags {
		groups := make(map[string][]string)
		for k := range sc.names {
			if k.Tag != tag {
				continue
			}
			f := fold.String(k.Name)
			groups[f] = append(groups[f], k.Name)
		}
		keys := make([]string, 0, len(groups))
		for f, names := range groups {
			if len(names) > 1 {
				keys = append(keys, f)
			}
		}
		slices.Sort(keys)
		for _, f := range keys {
			names := groups[f]
			slices.Sort(names)
			diag.ReportWarning(s.rep, diag.ScpCaseConflict, source.Span{},
				fmt.Sprintf("Detected multiple %s with the same case-insensitive names: %v", tag, names)).Emit()
		}
	}
	children := append([]ScopeID(nil), sc.Children...)
	for _, c := range children {
		s.warnCase(c, fold)
	}
}
