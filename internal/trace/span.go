package trace

import (
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span is an open span. Spans begun on a disabled tracer are inert: every
// method is a no-op and ID returns 0.
type Span struct {
	tracer Tracer
	begin  Event
	extra  map[string]string
}

// Begin emits the opening event of a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{tracer: t, begin: Event{
		Time:     time.Now(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   spanIDs.Add(1),
		ParentID: parent,
		Name:     name,
	}}
	ev := s.begin
	t.Emit(&ev)
	return s
}

func (s *Span) active() bool { return s != nil && s.tracer != nil }

// End emits the closing event with detail and returns how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if !s.active() {
		return 0
	}
	end := s.begin
	end.Time = time.Now()
	end.Kind = KindSpanEnd
	end.Detail = detail
	end.Extra = s.extra
	s.tracer.Emit(&end)
	return end.Time.Sub(s.begin.Time)
}

// Fail ends the span as failed with msg attached.
func (s *Span) Fail(msg string) time.Duration {
	return s.WithExtra("error", msg).End("failed")
}

// WithExtra attaches a key-value pair to the closing event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.active() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID.
func (s *Span) ID() uint64 {
	if !s.active() {
		return 0
	}
	return s.begin.SpanID
}

// Point emits an instant event, such as a cache hit, under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
