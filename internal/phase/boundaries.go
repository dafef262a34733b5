package phase

import (
	"fmt"
	"time"

	"buildlens/internal/profile"
)

// Interval is the time span a phase occupied.
type Interval struct {
	Start profile.Timestamp
	End   profile.Timestamp
}

// Duration returns End-Start.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// Contains reports whether ts lies in [Start, End).
func (iv Interval) Contains(ts profile.Timestamp) bool {
	return ts >= iv.Start && ts < iv.End
}

// Builder accumulates phase intervals before they are frozen into Boundaries.
type Builder struct {
	order   Order
	entries map[Phase]Interval
}

// NewBuilder returns a builder for phases of order.
func NewBuilder(order Order) *Builder {
	return &Builder{order: order, entries: make(map[Phase]Interval)}
}

// Add records the interval of phase p.
func (b *Builder) Add(p Phase, iv Interval) error {
	if !b.order.Contains(p) {
		return &UnknownPhaseError{Phase: p, Order: b.order}
	}
	if _, dup := b.entries[p]; dup {
		return fmt.Errorf("phase: %s added twice", p)
	}
	if iv.End < iv.Start {
		return fmt.Errorf("phase: %s interval ends at %d before it starts at %d", p, iv.End, iv.Start)
	}
	b.entries[p] = iv
	return nil
}

// Build freezes the accumulated entries. The builder may keep being used;
// later additions do not affect the returned Boundaries.
func (b *Builder) Build() *Boundaries {
	bd := &Boundaries{
		order:   b.order,
		slots:   make([]Interval, b.order.Len()),
		present: make([]bool, b.order.Len()),
	}
	for p, iv := range b.entries {
		i, _ := b.order.Index(p)
		bd.slots[i] = iv
		bd.present[i] = true
	}
	return bd
}

// Boundaries is an immutable, sparse mapping from phase to interval. Absent
// phases are never synthesized; the closest-neighbor queries walk the phase
// order, not the timestamps.
type Boundaries struct {
	order   Order
	slots   []Interval
	present []bool
}

// Order returns the phase order the boundaries were built for.
func (b *Boundaries) Order() Order { return b.order }

// Get returns the interval of p when it was recorded.
func (b *Boundaries) Get(p Phase) (Interval, bool) {
	i, ok := b.order.Index(p)
	if !ok || !b.present[i] {
		return Interval{}, false
	}
	return b.slots[i], true
}

// GetOrClosestBefore returns p if present, otherwise the latest present phase
// ordered before p.
func (b *Boundaries) GetOrClosestBefore(p Phase) (Phase, Interval, bool) {
	return b.walk(p, -1)
}

// GetOrClosestAfter returns p if present, otherwise the earliest present phase
// ordered after p.
func (b *Boundaries) GetOrClosestAfter(p Phase) (Phase, Interval, bool) {
	return b.walk(p, +1)
}

func (b *Boundaries) walk(p Phase, step int) (Phase, Interval, bool) {
	start, ok := b.order.Index(p)
	if !ok {
		return "", Interval{}, false
	}
	for i := start; i >= 0 && i < len(b.slots); i += step {
		if b.present[i] {
			return b.order.phases[i], b.slots[i], true
		}
	}
	return "", Interval{}, false
}

// Phases returns the recorded phases in order.
func (b *Boundaries) Phases() []Phase {
	var out []Phase
	for i, ok := range b.present {
		if ok {
			out = append(out, b.order.phases[i])
		}
	}
	return out
}

// Len returns the number of recorded phases.
func (b *Boundaries) Len() int {
	n := 0
	for _, ok := range b.present {
		if ok {
			n++
		}
	}
	return n
}

// Span returns the interval from the earliest recorded start to the latest
// recorded end.
func (b *Boundaries) Span() (Interval, bool) {
	var span Interval
	found := false
	for i, ok := range b.present {
		if !ok {
			continue
		}
		iv := b.slots[i]
		if !found {
			span, found = iv, true
			continue
		}
		span.Start = min(span.Start, iv.Start)
		span.End = max(span.End, iv.End)
	}
	return span, found
}

// PhaseAt returns the recorded phase whose interval contains ts. When several
// overlap, the latest in order wins.
func (b *Boundaries) PhaseAt(ts profile.Timestamp) (Phase, bool) {
	for i := len(b.slots) - 1; i >= 0; i-- {
		if b.present[i] && b.slots[i].Contains(ts) {
			return b.order.phases[i], true
		}
	}
	return "", false
}
