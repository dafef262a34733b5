package engine

import (
	"fmt"

	"buildlens/internal/fact"
)

// CycleError reports a fact type re-entered while it was still being resolved.
type CycleError struct {
	Chain Chain // closed loop, first and last element are equal
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", e.Chain)
}

// DerivationError reports a failed derivation. It is cached and replayed to
// every later requester of Type.
type DerivationError struct {
	Type  fact.Type
	Chain Chain // chain active when the derivation ran, ending with Type
	Err   error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive %s (via %s): %v", e.Type, e.Chain, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }

// MissingUpstreamError is returned by Get for a fact that is unavailable. It
// does not match fact.ErrUnavailable, so a provider that requires the fact
// fails instead of becoming unavailable itself.
type MissingUpstreamError struct {
	Type   fact.Type
	Chain  Chain
	Reason string
}

func (e *MissingUpstreamError) Error() string {
	if len(e.Chain) > 1 {
		return fmt.Sprintf("missing upstream data: %s required by %s: %s", e.Type, e.Chain[:len(e.Chain)-1], e.Reason)
	}
	return fmt.Sprintf("missing upstream data: %s: %s", e.Type, e.Reason)
}

// DuplicateProviderError reports two providers registered for one fact type.
type DuplicateProviderError struct {
	Type fact.Type
}

func (e *DuplicateProviderError) Error() string {
	return fmt.Sprintf("ambiguous derivation: more than one provider registered for %s", e.Type)
}

// UnknownFactError reports a request for a fact type nobody provides.
type UnknownFactError struct {
	Type  fact.Type
	Chain Chain
}

func (e *UnknownFactError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("no provider registered for %s (requested via %s)", e.Type, e.Chain)
	}
	return fmt.Sprintf("no provider registered for %s", e.Type)
}

// TypeMismatchError reports a provider that produced a value of the wrong Go type.
type TypeMismatchError struct {
	Type fact.Type
	Got  fact.Fact
	Want string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("provider for %s produced %T, want %s", e.Type, e.Got, e.Want)
}
