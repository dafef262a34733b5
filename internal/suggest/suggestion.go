// Package suggest defines suggestion providers and runs them against one
// analysis engine, isolating their outputs from each other.
package suggest

import (
	"context"
	"fmt"

	"buildlens/internal/engine"
)

// Caveat flags reduced confidence in a suggestion.
type Caveat struct {
	Message string
}

// Suggestion is one actionable recommendation.
type Suggestion struct {
	ID             string
	Title          string
	Recommendation string
	Rationale      []string
	Caveats        []Caveat
}

// New returns a suggestion without rationale or caveats.
func New(id, title, recommendation string) Suggestion {
	return Suggestion{ID: id, Title: title, Recommendation: recommendation}
}

func (s Suggestion) WithRationale(format string, args ...any) Suggestion {
	s.Rationale = append(s.Rationale, fmt.Sprintf(format, args...))
	return s
}

func (s Suggestion) WithCaveat(format string, args ...any) Suggestion {
	s.Caveats = append(s.Caveats, Caveat{Message: fmt.Sprintf(format, args...)})
	return s
}

// Failure describes why a provider could not produce suggestions.
type Failure struct {
	Message string
	Err     error
}

// Output is everything one provider produced.
type Output struct {
	Provider    string
	Suggestions []Suggestion
	Failure     *Failure
}

// Failed reports whether the provider failed.
func (o Output) Failed() bool { return o.Failure != nil }

// Of returns a successful output holding suggestions.
func Of(provider string, suggestions ...Suggestion) Output {
	return Output{Provider: provider, Suggestions: suggestions}
}

// Empty returns a successful output without suggestions, used when the facts
// a provider needs are not available.
func Empty(provider string) Output {
	return Output{Provider: provider}
}

// Failed returns a failed output for err.
func Failed(provider string, err error) Output {
	return Output{Provider: provider, Failure: &Failure{Message: err.Error(), Err: err}}
}

// Provider turns facts into suggestions. Suggest must not panic for missing
// data; unavailable facts yield an empty output.
type Provider interface {
	Name() string
	Suggest(ctx context.Context, r engine.Resolver) Output
}

// Func adapts a function into a Provider.
func Func(name string, fn func(ctx context.Context, r engine.Resolver) Output) Provider {
	return funcProvider{name: name, fn: fn}
}

type funcProvider struct {
	name string
	fn   func(ctx context.Context, r engine.Resolver) Output
}

func (p funcProvider) Name() string { return p.name }

func (p funcProvider) Suggest(ctx context.Context, r engine.Resolver) Output { return p.fn(ctx, r) }
