// Package phase indexes the time boundaries of build phases and answers
// nearest-neighbor queries over the phase taxonomy.
package phase

import (
	"fmt"
	"slices"
	"strings"
)

// Phase names one step of a build invocation.
type Phase string

const (
	Launch       Phase = "LAUNCH"
	Init         Phase = "INIT"
	Evaluate     Phase = "EVALUATE"
	Dependencies Phase = "DEPENDENCIES"
	Prepare      Phase = "PREPARE"
	Execute      Phase = "EXECUTE"
	Finish       Phase = "FINISH"
)

// Order is a fixed total order over phases. The zero Order contains nothing.
type Order struct {
	phases []Phase
	index  map[Phase]int
}

// DefaultOrder is the phase order of a regular build invocation.
var DefaultOrder = MustOrder(Launch, Init, Evaluate, Dependencies, Prepare, Execute, Finish)

// NewOrder builds an order from phases listed earliest first.
func NewOrder(phases ...Phase) (Order, error) {
	if len(phases) == 0 {
		return Order{}, fmt.Errorf("phase: empty phase order")
	}
	o := Order{phases: slices.Clone(phases), index: make(map[Phase]int, len(phases))}
	for i, p := range phases {
		if p == "" {
			return Order{}, fmt.Errorf("phase: empty phase name at position %d", i)
		}
		if _, dup := o.index[p]; dup {
			return Order{}, fmt.Errorf("phase: %s listed twice in phase order", p)
		}
		o.index[p] = i
	}
	return o, nil
}

// MustOrder is NewOrder for static orders; it panics on error.
func MustOrder(phases ...Phase) Order {
	o, err := NewOrder(phases...)
	if err != nil {
		panic(err)
	}
	return o
}

// ParseOrder builds an order from names, e.g. taken from configuration.
// Names are upper-cased.
func ParseOrder(names []string) (Order, error) {
	phases := make([]Phase, len(names))
	for i, n := range names {
		phases[i] = Phase(strings.ToUpper(strings.TrimSpace(n)))
	}
	return NewOrder(phases...)
}

// Index returns the position of p in the order.
func (o Order) Index(p Phase) (int, bool) {
	i, ok := o.index[p]
	return i, ok
}

// Contains reports whether p belongs to the order.
func (o Order) Contains(p Phase) bool {
	_, ok := o.index[p]
	return ok
}

// Phases returns the phases earliest first.
func (o Order) Phases() []Phase { return slices.Clone(o.phases) }

// Len returns the number of phases in the order.
func (o Order) Len() int { return len(o.phases) }

func (o Order) String() string {
	parts := make([]string, len(o.phases))
	for i, p := range o.phases {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

// UnknownPhaseError reports a phase outside the active order.
type UnknownPhaseError struct {
	Phase Phase
	Order Order
}

func (e *UnknownPhaseError) Error() string {
	return fmt.Sprintf("phase: unknown phase %q (known: %s)", e.Phase, e.Order)
}
