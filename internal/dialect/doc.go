// Package dialect guesses the input dialect of a netlist from keyword and
// syntax evidence, for inputs given without an explicit dialect.
//
// Detection never changes how a file is read; it only picks the descriptor
// the reader is started with.
package dialect
