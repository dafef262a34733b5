// Package engine resolves analysis facts on demand.
//
// # Model
//
// A Registry maps every fact type to exactly one Provider. An Engine owns the
// fact cache of one analysis run and evaluates requests by pulling: asking
// for a fact invokes its provider, which in turn asks the Resolver it was
// handed for the facts it depends on. Nothing has to declare the dependency
// graph up front.
//
// # Guarantees
//
//   - Each fact type is derived at most once per Engine. Successes and
//     failures are both cached; a cached failure is returned verbatim, with
//     the derivation chain that produced it.
//   - Requests for the same fact type are single-flight: concurrent callers
//     wait for the first caller's derivation and share its outcome. Different
//     fact types derive concurrently.
//   - The Chain of in-flight fact types is explicit. Re-entering a type that
//     is already on the chain fails with a CycleError naming the whole chain.
//     Cycles that span goroutines are caught by walking what each in-flight
//     derivation is waiting on before blocking.
//
// # Unavailable facts
//
// Providers return fact.Unavailable when the trace lacks their input.
// GetOptional reports such facts as absent. Get treats them as a hard
// MissingUpstreamError, so a consumer that requires the fact fails while a
// sibling that can do without it is unaffected.
package engine
