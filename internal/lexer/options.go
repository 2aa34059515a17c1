package lexer

import "strings"

// Options tune the tokenizer to one input dialect.
type Options struct {
	Dialect string
	// InlineComment starts a trailing comment ('$' for HSPICE, ';' elsewhere).
	InlineComment byte
	// PackageOptions means the first bare word of .OPTIONS names a package.
	PackageOptions bool
	// Title makes the first line of a top-level file its title.
	Title bool
}

// OptionsFor returns the options of a known dialect; unknown names get the
// generic SPICE options.
func OptionsFor(dialect string) Options {
	switch strings.ToLower(dialect) {
	case "hspice":
		return Options{Dialect: "hspice", InlineComment: '$', Title: true}
	case "pspice":
		return Options{Dialect: "pspice", InlineComment: ';', Title: true}
	case "xyce":
		return Options{Dialect: "xyce", InlineComment: ';', PackageOptions: true, Title: true}
	default:
		return Options{Dialect: strings.ToLower(dialect), InlineComment: ';', Title: true}
	}
}
