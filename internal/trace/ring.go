package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory so that a failed
// analysis can dump what led up to the failure.
type RingTracer struct {
	leveled

	mu      sync.Mutex
	buf     []Event
	written uint64 // events ever stored; the newest sits at (written-1) % len(buf)
}

// NewRingTracer returns a ring retaining up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{leveled: leveled{level}, buf: make([]Event, capacity)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !admits(t.level, ev) {
		return
	}
	t.mu.Lock()
	t.written++
	stored := *ev
	stored.Seq = t.written
	t.buf[t.slot(t.written-1)] = stored
	t.mu.Unlock()
}

func (t *RingTracer) slot(seq uint64) uint64 { return seq % uint64(len(t.buf)) }

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	events, _ := t.snapshot()
	return events
}

// snapshot also returns how many events were overwritten by newer ones.
func (t *RingTracer) snapshot() ([]Event, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := min(t.written, uint64(len(t.buf)))
	first := t.written - kept
	events := make([]Event, 0, kept)
	for seq := first; seq < t.written; seq++ {
		events = append(events, t.buf[t.slot(seq)])
	}
	return events, first
}

// Dump writes the retained events to w. Text dumps start with a note when
// older events were already overwritten.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events, dropped := t.snapshot()
	if dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier trace events dropped\n", dropped); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }
