// Package token defines the tagged-token contract between netlist tokenizers
// and the rest of the translator.
// Invariants:
//   - Token.Kinds is never empty for tokens produced by a tokenizer.
//   - Line.Lines lists physical line numbers in ascending order.
//   - A Line with Severity SevError or SevCritical may carry no tokens.
package token
