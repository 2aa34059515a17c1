package source

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

type (
	// FileID indexes a file within its FileSet.
	FileID uint32
	// FileFlags record how a file entered the FileSet.
	FileFlags uint8
)

const (
	FileVirtual FileFlags = 1 << iota // added from memory
	FileHadBOM
	FileNormalizedCRLF
	FileIncluded // reached through .INC or .LIB
)

// File is one netlist file as read, after BOM and CRLF normalization.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineIdx holds the offset of every '\n'.
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (f *File) size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("%s: file too large: %w", f.Path, err))
	}
	return n
}

// LineCount returns the number of physical lines; an unterminated last line
// counts.
func (f *File) LineCount() uint32 {
	n := uint32(len(f.LineIdx)) // #nosec G115 -- bounded by size()
	if size := f.size(); size > 0 && f.Content[size-1] != '\n' {
		n++
	}
	return n
}

// lineBounds returns the byte range of line n without its newline, or an
// empty range for a line that does not exist.
func (f *File) lineBounds(n uint32) (start, end uint32) {
	size := f.size()
	if n == 0 || n > f.LineCount() {
		return 0, 0
	}
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end = size
	if int(n-1) < len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return start, end
}

// LineSpan returns the span of physical line n (1-based).
func (f *File) LineSpan(n uint32) Span {
	start, end := f.lineBounds(n)
	return Span{File: f.ID, Start: start, End: end}
}

// GetLine returns the text of physical line n, "" past the end.
func (f *File) GetLine(n uint32) string {
	start, end := f.lineBounds(n)
	return string(f.Content[start:end])
}

// position converts a byte offset. A newline byte belongs to the line it
// ends.
func (f *File) position(off uint32) LineCol {
	line, _ := slices.BinarySearch(f.LineIdx, off)
	var lineStart uint32
	if line > 0 {
		lineStart = f.LineIdx[line-1] + 1
	}
	return LineCol{Line: uint32(line) + 1, Col: off - lineStart + 1} // #nosec G115
}

// FormatPath renders the path for diagnostics. mode is "absolute",
// "relative" (to baseDir, else the working directory), "basename" or "auto",
// which shortens long absolute paths to their base name.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return BaseName(f.Path)
	case "auto":
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return BaseName(f.Path)
		}
	}
	return f.Path
}
