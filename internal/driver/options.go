// Package driver runs whole translations: it picks the dialects, reads a
// top-level netlist, writes its translation and serves repeated runs from
// the translation cache.
package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"netxlate/internal/cache"
	"netxlate/internal/descriptor"
	"netxlate/internal/observ"
	"netxlate/internal/ui"
)

// AutoInput asks for the input dialect to be detected from the netlist.
const AutoInput = "auto"

// FallbackInput is used when detection finds no dialect.
const FallbackInput = "hspice"

// ErrSameDialect is returned when the input and output dialects match.
var ErrSameDialect = errors.New("input and output dialects are the same")

// Options configure one or more translations.
type Options struct {
	// Input is a dialect name or AutoInput.
	Input  string
	Output string
	// DialectsDir holds descriptor files that take precedence over the
	// built-in ones, named <dialect>.toml.
	DialectsDir string

	// OutputPath names the translated top-level file. It only applies to
	// single-file runs; OutDir applies to every file.
	OutputPath string
	OutDir     string

	CombinePrint bool
	Contexts     bool
	Strict       bool

	// Jobs bounds concurrent translations and writes; 0 uses GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int

	// NoWrite reads and maps without writing anything.
	NoWrite bool

	// Cache is consulted before reading when set.
	Cache *cache.Cache
	// Timer collects phase timings when set.
	Timer *observ.Timer
	// Sink receives progress events; nil drops them.
	Sink ui.Sink
}

func (o *Options) sink() ui.Sink {
	if o.Sink == nil {
		return ui.NopSink{}
	}
	return o.Sink
}

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 512
	}
	return o.MaxDiagnostics
}

// Language loads a dialect descriptor, preferring a file in DialectsDir.
func (o *Options) Language(name string) (*descriptor.Language, error) {
	if o.DialectsDir != "" {
		p := filepath.Join(o.DialectsDir, strings.ToLower(name)+".toml")
		if _, err := os.Stat(p); err == nil {
			return descriptor.LoadFile(p)
		}
	}
	return descriptor.Load(name)
}

// outputFor places the translation of top according to OutputPath and
// OutDir.
func (o *Options) outputFor(top string, lang *descriptor.Language) string {
	def := writerDefault(top, lang)
	switch {
	case o.OutputPath != "":
		return o.OutputPath
	case o.OutDir != "":
		return filepath.Join(o.OutDir, filepath.Base(def))
	default:
		return def
	}
}
