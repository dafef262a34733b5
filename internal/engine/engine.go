package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"buildlens/internal/fact"
	"buildlens/internal/logging"
	"buildlens/internal/trace"
)

// Engine evaluates fact requests for one analysis run. It is safe for
// concurrent use; create a new Engine for every run.
type Engine struct {
	reg *Registry

	mu      sync.Mutex
	entries map[fact.Type]*entry

	derivations atomic.Int64
	hits        atomic.Int64
}

// entry is the write-once cache slot of one fact type.
type entry struct {
	typ   fact.Type
	chain Chain
	done  chan struct{}

	// set before done is closed, read-only afterwards
	value fact.Fact
	err   error
	// abandoned is set when the deriving caller was cancelled; the entry is
	// removed from the cache and waiters derive again
	abandoned bool

	// in-flight entry this derivation currently blocks on; guarded by Engine.mu
	waitingOn *entry
}

func (en *entry) finished() bool {
	select {
	case <-en.done:
		return true
	default:
		return false
	}
}

// New returns an engine resolving facts with the providers in reg.
func New(reg *Registry) *Engine {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Engine{reg: reg, entries: make(map[fact.Type]*entry)}
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() *Registry { return e.reg }

// Get resolves t as a top-level request.
func (e *Engine) Get(ctx context.Context, t fact.Type) (fact.Fact, error) {
	return resolver{e: e}.Get(ctx, t)
}

// GetOptional resolves t as a top-level request, reporting unavailable facts as absent.
func (e *Engine) GetOptional(ctx context.Context, t fact.Type) (fact.Fact, bool, error) {
	return resolver{e: e}.GetOptional(ctx, t)
}

// Chain returns the empty chain of top-level requests.
func (e *Engine) Chain() Chain { return nil }

// Stats reports how many derivations ran and how many requests hit the cache.
type Stats struct {
	Derivations int64
	CacheHits   int64
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{Derivations: e.derivations.Load(), CacheHits: e.hits.Load()}
}

// resolver is the Resolver handed to a provider; self is the entry that
// provider is deriving (nil for top-level requests).
type resolver struct {
	e     *Engine
	chain Chain
	self  *entry
}

func (r resolver) Chain() Chain { return r.chain }

func (r resolver) Get(ctx context.Context, t fact.Type) (fact.Fact, error) {
	v, err := r.e.resolve(ctx, r, t)
	if err == nil {
		return v, nil
	}
	if fact.IsUnavailable(err) {
		return nil, &MissingUpstreamError{Type: t, Chain: r.chain.Push(t), Reason: unavailableReason(err)}
	}
	return nil, err
}

func (r resolver) GetOptional(ctx context.Context, t fact.Type) (fact.Fact, bool, error) {
	v, err := r.e.resolve(ctx, r, t)
	if err == nil {
		return v, true, nil
	}
	if fact.IsUnavailable(err) {
		return nil, false, nil
	}
	return nil, false, err
}

func (e *Engine) resolve(ctx context.Context, from resolver, t fact.Type) (fact.Fact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if from.chain.Contains(t) {
		return nil, &CycleError{Chain: from.chain.Cycle(t)}
	}

	e.mu.Lock()
	if en, ok := e.entries[t]; ok {
		if en.finished() {
			e.mu.Unlock()
			e.hits.Add(1)
			trace.Point(trace.FromContext(ctx), trace.ScopeDerivation, string(t), "cached", trace.CurrentSpan(ctx).SpanID)
			return en.value, en.err
		}
		if loop := e.waitCycle(from.chain, en); loop != nil {
			e.mu.Unlock()
			return nil, &CycleError{Chain: loop}
		}
		from.blockOn(en)
		e.mu.Unlock()
		return e.wait(ctx, from, en)
	}

	p, ok := e.reg.Lookup(t)
	if !ok {
		e.mu.Unlock()
		return nil, &UnknownFactError{Type: t, Chain: from.chain}
	}
	en := &entry{typ: t, chain: from.chain.Push(t), done: make(chan struct{})}
	e.entries[t] = en
	from.blockOn(en)
	e.mu.Unlock()

	value, err := e.derive(ctx, p, en)

	e.mu.Lock()
	from.blockOn(nil)
	if err != nil && cancelled(ctx, err) {
		if e.entries[t] == en {
			delete(e.entries, t)
		}
		en.abandoned = true
		close(en.done)
		e.mu.Unlock()
		return nil, ctx.Err()
	}
	en.value, en.err = value, err
	close(en.done)
	e.mu.Unlock()
	return value, err
}

// cancelled reports whether err stems from the cancellation of ctx rather
// than from the provider itself.
func cancelled(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// blockOn records what the caller's own derivation is waiting for.
// Must be called with Engine.mu held.
func (r resolver) blockOn(en *entry) {
	if r.self != nil {
		r.self.waitingOn = en
	}
}

// wait blocks until another caller finishes deriving en.
func (e *Engine) wait(ctx context.Context, from resolver, en *entry) (fact.Fact, error) {
	select {
	case <-en.done:
	case <-ctx.Done():
	}

	e.mu.Lock()
	from.blockOn(nil)
	e.mu.Unlock()

	if !en.finished() {
		return nil, ctx.Err()
	}
	if en.abandoned {
		return e.resolve(ctx, from, en.typ)
	}
	e.hits.Add(1)
	return en.value, en.err
}

// waitCycle follows the wait-for links starting at en. If they lead back to
// a fact type on chain, blocking would deadlock; the closed loop is returned.
// Must be called with Engine.mu held.
func (e *Engine) waitCycle(chain Chain, en *entry) Chain {
	var path Chain
	for cur, steps := en, 0; cur != nil && steps <= len(e.entries); cur, steps = cur.waitingOn, steps+1 {
		if idx := slices.Index(chain, cur.typ); idx >= 0 {
			loop := make(Chain, 0, len(chain)-idx+len(path)+1)
			loop = append(loop, chain[idx:]...)
			loop = append(loop, path...)
			return append(loop, cur.typ)
		}
		path = append(path, cur.typ)
	}
	return nil
}

func (e *Engine) derive(ctx context.Context, p Provider, en *entry) (fact.Fact, error) {
	e.derivations.Add(1)
	ctx, span := trace.StartSpan(ctx, trace.ScopeDerivation, string(en.typ))

	value, err := invoke(ctx, p, resolver{e: e, chain: en.chain, self: en})
	if err == nil && value == nil {
		err = errors.New("provider returned no value")
	}
	if err != nil {
		value = nil
		err = &DerivationError{Type: en.typ, Chain: en.chain, Err: err}
	}

	switch {
	case err == nil:
		span.End("ok")
	case fact.IsUnavailable(err):
		span.End("unavailable")
		logging.FromContext(ctx).Debug("fact unavailable", "fact", en.typ, "reason", unavailableReason(err))
	default:
		span.Fail(err.Error())
		logging.FromContext(ctx).Debug("derivation failed", "fact", en.typ, "chain", en.chain.String(), "error", err)
	}
	return value, err
}

// invoke runs the provider, turning a panic into an error so one broken
// provider cannot take down the run.
func invoke(ctx context.Context, p Provider, r Resolver) (value fact.Fact, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			value, err = nil, fmt.Errorf("provider panicked: %v", rec)
		}
	}()
	return p.Derive(ctx, r)
}

func unavailableReason(err error) string {
	var ue *fact.UnavailableError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return err.Error()
}
