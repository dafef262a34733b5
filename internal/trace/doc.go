// Package trace records what the analyzer is doing while it resolves facts
// and runs suggestion providers.
//
// Tracing is meant for diagnosing slow or stuck analyses: every derivation
// performed by the resolution engine and every suggestion provider run is a
// span, so a trace shows which fact took long to compute and on whose behalf.
//
// # Usage
//
//	buildlens analyze --trace=- --trace-level=debug profile.json
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events in memory for dumps on failure
//   - MultiTracer: fans events out to several tracers
//
// # Levels and scopes
//
// Events are categorized by scope: ScopeRun for the whole analysis,
// ScopeSuggestion for one suggestion provider and ScopeDerivation for one
// fact derivation. LevelRun emits run and suggestion spans; LevelDebug adds
// derivations.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartSpan(ctx, trace.ScopeSuggestion, "use-skymeld")
//	defer span.End("")
package trace
