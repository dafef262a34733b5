package engine

import (
	"context"
	"fmt"
	"reflect"

	"buildlens/internal/fact"
)

// Resolver is the view of the engine handed to providers and suggestion
// providers. Nested requests made through it share the engine cache and
// extend the caller's derivation chain.
type Resolver interface {
	// Get returns the fact of type t or a hard error.
	Get(ctx context.Context, t fact.Type) (fact.Fact, error)
	// GetOptional returns false without error when the fact is unavailable.
	GetOptional(ctx context.Context, t fact.Type) (fact.Fact, bool, error)
	// Chain returns the derivation chain of this resolver.
	Chain() Chain
}

// Provider derives exactly one fact type.
type Provider interface {
	Provides() fact.Type
	Derive(ctx context.Context, r Resolver) (fact.Fact, error)
}

type providerFunc[T fact.Fact] struct {
	key fact.Key[T]
	fn  func(ctx context.Context, r Resolver) (T, error)
}

// Provide adapts a typed derivation function into a Provider for key.
func Provide[T fact.Fact](key fact.Key[T], fn func(ctx context.Context, r Resolver) (T, error)) Provider {
	return providerFunc[T]{key: key, fn: fn}
}

// Value returns a Provider that always yields v. Handy for raw facts that are
// already materialized.
func Value[T fact.Fact](key fact.Key[T], v T) Provider {
	return Provide(key, func(context.Context, Resolver) (T, error) { return v, nil })
}

func (p providerFunc[T]) Provides() fact.Type { return p.key.Type() }

func (p providerFunc[T]) Derive(ctx context.Context, r Resolver) (fact.Fact, error) {
	v, err := p.fn(ctx, r)
	if err != nil {
		return nil, err
	}
	if isNil(v) {
		return nil, nil
	}
	return v, nil
}

// isNil reports whether f is nil or a typed nil held in a fact interface.
func isNil(f fact.Fact) bool {
	if f == nil {
		return true
	}
	switch rv := reflect.ValueOf(f); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Registry maps fact types to their providers. It is populated during setup
// and read-only once an Engine uses it.
type Registry struct {
	providers map[fact.Type]Provider
	order     []fact.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[fact.Type]Provider)}
}

// Register adds providers. A second provider for an already registered fact
// type is rejected with DuplicateProviderError; providers preceding it in the
// same call stay registered.
func (r *Registry) Register(providers ...Provider) error {
	for _, p := range providers {
		if p == nil {
			return fmt.Errorf("engine: nil provider")
		}
		t := p.Provides()
		if t == "" {
			return fmt.Errorf("engine: provider %T declares an empty fact type", p)
		}
		if _, dup := r.providers[t]; dup {
			return &DuplicateProviderError{Type: t}
		}
		r.providers[t] = p
		r.order = append(r.order, t)
	}
	return nil
}

// Lookup returns the provider registered for t.
func (r *Registry) Lookup(t fact.Type) (Provider, bool) {
	p, ok := r.providers[t]
	return p, ok
}

// Types returns registered fact types in registration order.
func (r *Registry) Types() []fact.Type {
	out := make([]fact.Type, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int { return len(r.order) }
