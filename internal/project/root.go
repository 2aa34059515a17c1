package project

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ConfigName is the project configuration file.
const ConfigName = "netxlate.toml"

// ConfigEnv names a configuration file to use instead of searching.
const ConfigEnv = "NETXLATE_CONFIG"

// FindConfig returns the configuration in effect for startDir: the file
// named by $NETXLATE_CONFIG, else the nearest netxlate.toml in startDir or
// one of its parents.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if env := os.Getenv(ConfigEnv); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", false, fmt.Errorf("%s: %w", ConfigEnv, err)
		}
		return env, true, nil
	}
	dir, err := filepath.Abs(cmp.Or(startDir, "."))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for ; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ConfigName)
		switch _, err := os.Stat(candidate); {
		case err == nil:
			return candidate, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		if filepath.Dir(dir) == dir {
			return "", false, nil
		}
	}
}
