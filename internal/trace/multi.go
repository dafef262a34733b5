package trace

import "io"

// MultiTracer fans out trace events to multiple tracers.
type MultiTracer struct {
	leveled
	tracers []Tracer
}

// NewMultiTracer creates a MultiTracer that emits to all provided tracers.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{leveled: leveled{level}, tracers: tracers}
}

// Emit sends a copy of the event to every underlying tracer.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		copied := *ev
		tr.Emit(&copied)
	}
}

// Flush flushes all underlying tracers and returns the first error.
func (t *MultiTracer) Flush() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying tracers and returns the first error.
func (t *MultiTracer) Close() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DumpRing writes the contents of the first ring tracer reachable from tr.
// It reports false when tr holds no ring.
func DumpRing(tr Tracer, w io.Writer, format Format) (bool, error) {
	switch t := tr.(type) {
	case *RingTracer:
		return true, t.Dump(w, format)
	case *MultiTracer:
		for _, inner := range t.tracers {
			if ok, err := DumpRing(inner, w, format); ok {
				return true, err
			}
		}
	}
	return false, nil
}
