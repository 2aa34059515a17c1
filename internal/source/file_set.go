package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet holds every file of one translation: the top-level netlist and
// whatever it includes. IDs are never reused; adding a path again gives a
// new ID and GetByPath then returns the newer file.
type FileSet struct {
	files   []File
	byPath  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// SetBaseDir sets the directory relative paths are rendered against.
func (s *FileSet) SetBaseDir(dir string) { s.baseDir = dir }

// BaseDir returns the base directory, the working directory if unset.
func (s *FileSet) BaseDir() string {
	if s.baseDir != "" {
		return s.baseDir
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores content under path and indexes its lines.
func (s *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(s.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("%s: file too large: %w", path, err))
	}
	f := File{
		ID:      FileID(n),
		Path:    normalizePath(path),
		Content: content,
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			break
		}
		off += i
		f.LineIdx = append(f.LineIdx, uint32(off)) // #nosec G115 -- checked above
		off++
	}
	s.files = append(s.files, f)
	s.byPath[f.Path] = f.ID
	return f.ID
}

// AddVirtual adds in-memory content, normalizing CRLF.
func (s *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = normalizeCRLF(content)
	return s.Add(name, content, FileVirtual)
}

// Load reads path, strips a UTF-8 BOM and turns CRLF into LF.
func (s *FileSet) Load(path string, flags FileFlags) (FileID, error) {
	// #nosec G304 -- netlist paths come from the user or from includes
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if rest, ok := bytes.CutPrefix(content, []byte("\xEF\xBB\xBF")); ok {
		content = rest
		flags |= FileHadBOM
	}
	if norm, changed := normalizeCRLF(content); changed {
		content = norm
		flags |= FileNormalizedCRLF
	}
	return s.Add(path, content, flags), nil
}

func (s *FileSet) Get(id FileID) *File { return &s.files[id] }

func (s *FileSet) Len() int { return len(s.files) }

// GetByPath returns the newest file added under path.
func (s *FileSet) GetByPath(path string) (*File, bool) {
	id, ok := s.byPath[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return &s.files[id], true
}

// Resolve converts span into line and column positions.
func (s *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &s.files[span.File]
	return f.position(span.Start), f.position(span.End)
}

// normalizeCRLF turns every "\r\n" into "\n"; a lone '\r' stays.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, []byte("\r\n")) {
		return content, false
	}
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), true
}
