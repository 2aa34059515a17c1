package dialect

import "fmt"

// Kind is one SPICE dialect a netlist may be written in.
type Kind uint8

const (
	Unknown Kind = iota
	HSpice
	PSpice
	Xyce

	kindCount
)

// String returns the descriptor name of the dialect.
func (k Kind) String() string {
	switch k {
	case HSpice:
		return "hspice"
	case PSpice:
		return "pspice"
	case Xyce:
		return "xyce"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("dialect.Kind(%s)", k.String())
}
