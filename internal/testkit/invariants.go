// Package testkit holds checks shared by the tests of several packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"netxlate/internal/scope"
	"netxlate/internal/source"
)

// CheckStatementInvariants verifies the statements recorded for each file:
//  1. every statement has a UID and the path it is listed under
//  2. its span lies inside the file content and points at that file,
//     unless it was synthesized (empty span at offset 0)
//  3. its physical lines are ascending and exist in the file
func CheckStatementInvariants(fs *source.FileSet, sess *scope.Session, files []string) error {
	if fs == nil || sess == nil {
		return fmt.Errorf("nil file set or session")
	}
	for _, path := range files {
		sf, ok := fs.GetByPath(path)
		if !ok {
			return fmt.Errorf("%s: not in the file set", path)
		}
		lenContent, err := safecast.Conv[uint32](len(sf.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		lineCount := sf.LineCount()

		for _, st := range sess.StatementsInFile(path) {
			b := st.Common()
			if !b.UID.IsValid() {
				return fmt.Errorf("%s: %s without UID", path, st.Kind())
			}
			if b.Path != path {
				return fmt.Errorf("%s: %s #%d listed under %s", b.Path, st.Kind(), b.UID, path)
			}
			sp := b.Span
			if sp.Empty() && sp.Start == 0 {
				continue
			}
			if sp.File != sf.ID {
				return fmt.Errorf("%s: %s #%d span points to file %d, want %d", path, st.Kind(), b.UID, sp.File, sf.ID)
			}
			if sp.End < sp.Start || sp.End > lenContent {
				return fmt.Errorf("%s: %s #%d span %v outside content of %d bytes", path, st.Kind(), b.UID, sp, lenContent)
			}
			for i, l := range b.Lines {
				if l == 0 || l > lineCount {
					return fmt.Errorf("%s: %s #%d line %d outside 1..%d", path, st.Kind(), b.UID, l, lineCount)
				}
				if i > 0 && l <= b.Lines[i-1] {
					return fmt.Errorf("%s: %s #%d lines %v not ascending", path, st.Kind(), b.UID, b.Lines)
				}
			}
		}
	}
	return nil
}
