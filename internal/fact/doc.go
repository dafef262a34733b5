// Package fact defines the value contract shared by every derivation step of
// the analysis engine.
//
// # Data model
//
// A Fact is an immutable value produced during one analysis run. It carries a
// human readable Description of what it represents and an optional one-line
// Summary that is only present when there is something notable to report.
//
// Every fact kind is identified by a stable Type. A Key binds that Type to the
// concrete Go type a provider produces, so consumers resolve facts through the
// typed accessors in internal/engine instead of asserting interfaces by hand:
//
//	var CoreCountKey = fact.NewKey[CoreCount]("core-count")
//
//	cores, err := engine.Get(ctx, r, CoreCountKey)
//
// # Unavailable facts
//
// A provider that cannot produce its fact because the relevant raw input is
// absent from the trace returns an error built by Unavailable. That outcome is
// soft: engine.GetOptional reports it as "absent" rather than as a failure.
package fact
