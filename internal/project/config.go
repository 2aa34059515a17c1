// Package project reads netxlate.toml and finds the netlists of a
// directory input.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrBadConfig wraps every validation failure of netxlate.toml.
var ErrBadConfig = errors.New("invalid netxlate.toml")

// Config is the decoded netxlate.toml. Zero values mean "not set"; flags
// given on the command line win over the file.
type Config struct {
	Translate TranslateConfig `toml:"translate"`
	Dialects  DialectsConfig  `toml:"dialects"`
	Cache     CacheConfig     `toml:"cache"`
	Ignore    IgnoreConfig    `toml:"ignore"`

	// Path and Root are filled by Load.
	Path string `toml:"-"`
	Root string `toml:"-"`
}

type TranslateConfig struct {
	// Input is the input dialect or "auto".
	Input        string `toml:"input"`
	Output       string `toml:"output"`
	OutDir       string `toml:"out_dir,omitempty"`
	Jobs         int    `toml:"jobs,omitempty"`
	CombinePrint bool   `toml:"combine_print"`
	Contexts     bool   `toml:"contexts"`
	Strict       bool   `toml:"strict"`
}

type DialectsConfig struct {
	// Dir holds extra descriptor files, relative to the project root.
	Dir string `toml:"dir,omitempty"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir,omitempty"`
}

type IgnoreConfig struct {
	File string `toml:"file"`
}

// Default is the configuration written by "netxlate init".
func Default() Config {
	return Config{
		Translate: TranslateConfig{Input: "auto", Output: "xyce"},
		Cache:     CacheConfig{Enabled: true},
		Ignore:    IgnoreConfig{File: DefaultIgnoreFile},
	}
}

// Load decodes and validates path.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: unknown keys %s", path, ErrBadConfig, strings.Join(keys, ", "))
	}
	if meta.IsDefined("translate", "jobs") && cfg.Translate.Jobs < 0 {
		return nil, fmt.Errorf("%s: %w: [translate].jobs must not be negative", path, ErrBadConfig)
	}
	if meta.IsDefined("translate", "output") && strings.TrimSpace(cfg.Translate.Output) == "" {
		return nil, fmt.Errorf("%s: %w: [translate].output is empty", path, ErrBadConfig)
	}
	if meta.IsDefined("dialects", "dir") && strings.TrimSpace(cfg.Dialects.Dir) == "" {
		return nil, fmt.Errorf("%s: %w: [dialects].dir is empty", path, ErrBadConfig)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return &cfg, nil
}

// Discover loads the netxlate.toml above startDir. ok is false when there
// is none.
func Discover(startDir string) (cfg *Config, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Resolve makes a project-relative path absolute.
func (c *Config) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || c.Root == "" {
		return rel
	}
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}

// Write encodes cfg into path, refusing to overwrite an existing file.
func Write(path string, cfg Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("%s: failed to encode TOML: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
