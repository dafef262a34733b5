package trace

import (
	"context"
	"strconv"
	"time"
)

// Heartbeat emits periodic run-scope events. A stuck analysis shows up in a
// trace as heartbeats with no span ends between them.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat emits a heartbeat every interval until Stop. It returns nil
// when tracing is disabled or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.beat(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) beat(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tracer.Emit(&Event{
				Time:  now,
				Kind:  KindHeartbeat,
				Scope: ScopeRun,
				Name:  "heartbeat",
				Extra: map[string]string{
					"beat":    strconv.Itoa(n),
					"elapsed": now.Sub(start).Round(time.Millisecond).String(),
				},
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. It is safe on a nil
// Heartbeat and may be called more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
