package source

import (
	"path/filepath"
	"strings"
)

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns p absolute, cleaned, with forward slashes.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath returns p relative to baseDir. Paths outside baseDir come
// back absolute.
func RelativePath(p, baseDir string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(abs), nil
	}
	return normalizePath(rel), nil
}

func BaseName(p string) string { return filepath.Base(p) }

// StripQuotes drops the quotes around (and inside) an include reference.
func StripQuotes(p string) string {
	return strings.NewReplacer(`"`, "", "'", "").Replace(p)
}

// ResolveInclude resolves ref, as written in the netlist, against the
// directory of the file holding the reference. Backslashes are accepted as
// separators.
func ResolveInclude(fromPath, ref string) string {
	ref = filepath.FromSlash(strings.ReplaceAll(StripQuotes(ref), `\`, "/"))
	if filepath.IsAbs(ref) {
		return normalizePath(ref)
	}
	dir := filepath.Dir(fromPath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return normalizePath(filepath.Join(dir, ref))
}
