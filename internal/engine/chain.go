package engine

import (
	"slices"
	"strings"

	"buildlens/internal/fact"
)

// Chain is the ordered sequence of fact types being resolved, outermost
// first. A Chain is never mutated; Push returns a new one.
type Chain []fact.Type

// Push returns a new chain with t appended.
func (c Chain) Push(t fact.Type) Chain {
	next := make(Chain, len(c), len(c)+1)
	copy(next, c)
	return append(next, t)
}

// Contains reports whether t is on the chain.
func (c Chain) Contains(t fact.Type) bool {
	return slices.Contains(c, t)
}

// Top returns the innermost fact type, or "" for an empty chain.
func (c Chain) Top() fact.Type {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

// Cycle returns the closed loop formed by re-entering t, e.g. a -> b -> a for
// chain a -> b and t = a. It returns nil when t is not on the chain.
func (c Chain) Cycle(t fact.Type) Chain {
	idx := slices.Index(c, t)
	if idx < 0 {
		return nil
	}
	return c[idx:].Push(t)
}

func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = string(t)
	}
	return strings.Join(parts, " -> ")
}
