package engine

import (
	"context"
	"fmt"

	"buildlens/internal/fact"
)

// Get resolves key through r and returns the fact as its concrete type.
func Get[T fact.Fact](ctx context.Context, r Resolver, key fact.Key[T]) (T, error) {
	var zero T
	v, err := r.Get(ctx, key.Type())
	if err != nil {
		return zero, err
	}
	return cast(key, v)
}

// GetOptional resolves key through r. It returns false without error when the
// fact is unavailable.
func GetOptional[T fact.Fact](ctx context.Context, r Resolver, key fact.Key[T]) (T, bool, error) {
	var zero T
	v, ok, err := r.GetOptional(ctx, key.Type())
	if err != nil || !ok {
		return zero, false, err
	}
	typed, err := cast(key, v)
	if err != nil {
		return zero, false, err
	}
	return typed, true, nil
}

func cast[T fact.Fact](key fact.Key[T], v fact.Fact) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, &TypeMismatchError{Type: key.Type(), Got: v, Want: fmt.Sprintf("%T", zero)}
	}
	return typed, nil
}
