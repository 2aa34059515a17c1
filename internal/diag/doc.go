// Package diag defines the diagnostic model shared by every translation phase.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the tokenizer, the line normalizer, the scope table, the mapping engine,
//     the instantiation-context tracer and the writer.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go). Tokenizer severities
//     (critical/error/warn/info) are folded onto this scale.
//   - Code: compact numeric identifier grouped by phase (codes.go):
//     RD reader/normalizer, SCP scope, MAP dialect mapping, IO files,
//     CTX instantiation contexts, OBS observability.
//   - Message: human oriented text.
//   - Primary: a source.Span covering the logical netlist line, so a single
//     diagnostic carries the file and the full physical line range of a
//     continued statement.
//   - Notes: optional secondary locations.
//
// # Policy
//
// Nothing unsupported is dropped silently. A construct that cannot be carried
// into the output dialect is commented out and reported at least as a
// warning; a parameter that the output dialect lacks is removed and reported.
// Fatal conditions travel as Go errors, not diagnostics; the driver converts
// them to an Error diagnostic once translation of the file is aborted.
//
// # Consumers
//
//   - internal/diagfmt renders diagnostics as pretty text or JSON.
//   - cmd/netxlate prints FormatShortDiagnostics for --format short.
package diag
