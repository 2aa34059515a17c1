// Package trace provides tracing for the netxlate translator.
//
// Tracing follows a translation from the CLI down to single logical lines, so
// a hang on a pathological include chain or a slow descriptor lookup can be
// located without a debugger. User-facing problems with the netlist are not
// trace events; they are diagnostics (see internal/diag).
//
// # Usage
//
//	netxlate translate --trace=- --trace-level=detail top.cir
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: circular buffer, dumped to stderr when a command fails
//   - MultiTracer: stream and ring together
//
// # Scopes and levels
//
// Spans nest driver → file → pass → line. LevelPhase emits driver and file
// spans, LevelDetail adds passes (tokenize, normalize, build, resolve,
// contexts, emit) and LevelDebug adds one event per logical line.
// LevelError streams nothing and only keeps passes in the ring.
//
// A heartbeat (--trace-heartbeat) names the innermost open span on every
// beat, which is enough to tell which include a stuck run is in.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "file:top.cir", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
//	ctx = trace.WithSpan(ctx, span)
package trace
