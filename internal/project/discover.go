package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoreFile lists patterns, gitignore syntax, of files a
// directory input skips.
const DefaultIgnoreFile = ".netxlateignore"

// netlistExts are the extensions of top-level netlists. Included files
// (.inc, .lib, .mod) are reached through the netlists that include them.
var netlistExts = []string{".sp", ".spi", ".spice", ".cir", ".net", ".ckt"}

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
}

// IsNetlist reports whether path has a top-level netlist extension.
func IsNetlist(path string) bool {
	return slices.Contains(netlistExts, strings.ToLower(filepath.Ext(path)))
}

// Netlists lists the netlists under root, sorted, skipping hidden entries,
// files matched by the ignore file and files whose name ends with skip
// (earlier translations).
func Netlists(root, ignoreFile string, skip ...string) ([]string, error) {
	gi, err := loadIgnore(root, ignoreFile)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skipDirs[name]; ok || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 || !IsNetlist(name) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(filepath.ToSlash(rel)) {
			return nil
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if slices.ContainsFunc(skip, func(s string) bool { return s != "" && strings.HasSuffix(base, s) }) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}

func loadIgnore(root, file string) (*ignore.GitIgnore, error) {
	if file == "" {
		file = DefaultIgnoreFile
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(root, file)
	}
	gi, err := ignore.CompileIgnoreFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return gi, nil
}
