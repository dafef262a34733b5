package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"buildlens/internal/fact"
)

type num int

func (n num) Description() string     { return "a number" }
func (n num) Summary() (string, bool) { return fmt.Sprint(int(n)), true }

type label string

func (l label) Description() string     { return "a label" }
func (l label) Summary() (string, bool) { return string(l), l != "" }

var (
	keyA = fact.NewKey[num]("a")
	keyB = fact.NewKey[num]("b")
	keyC = fact.NewKey[num]("c")
	keyL = fact.NewKey[label]("label")
)

func mustRegister(t *testing.T, providers ...Provider) *Engine {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register(providers...); err != nil {
		t.Fatalf("register: %v", err)
	}
	return New(reg)
}

func TestGetDerivesOnce(t *testing.T) {
	var calls atomic.Int32
	e := mustRegister(t,
		Value(keyA, num(2)),
		Provide(keyB, func(ctx context.Context, r Resolver) (num, error) {
			calls.Add(1)
			a, err := Get(ctx, r, keyA)
			if err != nil {
				return 0, err
			}
			return a * 10, nil
		}),
	)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := Get(ctx, e, keyB)
		if err != nil {
			t.Fatalf("Get(b): %v", err)
		}
		if got != 20 {
			t.Fatalf("Get(b) = %d, want 20", got)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("provider invoked %d times, want 1", n)
	}
	if st := e.Stats(); st.Derivations != 2 || st.CacheHits != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestGetReportsCycleForEveryMember(t *testing.T) {
	e := mustRegister(t,
		Provide(keyA, func(ctx context.Context, r Resolver) (num, error) { return Get(ctx, r, keyB) }),
		Provide(keyB, func(ctx context.Context, r Resolver) (num, error) { return Get(ctx, r, keyA) }),
	)
	ctx := context.Background()

	_, err := e.Get(ctx, keyA.Type())
	var cyc *CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("Get(a) error = %v, want CycleError", err)
	}
	if diff := cmp.Diff(Chain{"a", "b", "a"}, cyc.Chain); diff != "" {
		t.Fatalf("cycle chain mismatch (-want +got):\n%s", diff)
	}

	_, err = e.Get(ctx, keyB.Type())
	if !errors.As(err, &cyc) {
		t.Fatalf("Get(b) error = %v, want CycleError", err)
	}
}

func TestSelfCycle(t *testing.T) {
	e := mustRegister(t,
		Provide(keyA, func(ctx context.Context, r Resolver) (num, error) { return Get(ctx, r, keyA) }),
	)
	_, err := e.Get(context.Background(), keyA.Type())
	var cyc *CycleError
	if !errors.As(err, &cyc) || cyc.Chain.String() != "a -> a" {
		t.Fatalf("error = %v, want cycle a -> a", err)
	}
}

func TestFailureIsCachedAndReplayed(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	e := mustRegister(t,
		Provide(keyA, func(context.Context, Resolver) (num, error) {
			calls.Add(1)
			return 0, boom
		}),
	)
	ctx := context.Background()

	_, first := e.Get(ctx, keyA.Type())
	_, second := e.Get(ctx, keyA.Type())
	if !errors.Is(first, boom) {
		t.Fatalf("error = %v, want wrapping boom", first)
	}
	if first != second {
		t.Fatalf("cached failure not replayed verbatim: %v vs %v", first, second)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("failing provider invoked %d times, want 1", n)
	}
	var de *DerivationError
	if !errors.As(first, &de) || de.Type != "a" {
		t.Fatalf("error = %#v, want DerivationError for a", first)
	}
}

func TestUnavailableVersusMissingUpstream(t *testing.T) {
	e := mustRegister(t,
		Provide(keyA, func(context.Context, Resolver) (num, error) {
			return 0, fact.Unavailable("no phase data")
		}),
		Provide(keyB, func(ctx context.Context, r Resolver) (num, error) {
			v, ok, err := GetOptional(ctx, r, keyA)
			if err != nil {
				return 0, err
			}
			if !ok {
				return -1, nil
			}
			return v, nil
		}),
		Provide(keyC, func(ctx context.Context, r Resolver) (num, error) { return Get(ctx, r, keyA) }),
	)
	ctx := context.Background()

	if _, ok, err := e.GetOptional(ctx, keyA.Type()); ok || err != nil {
		t.Fatalf("GetOptional(a) = ok=%v err=%v, want absent", ok, err)
	}
	if got, err := Get(ctx, e, keyB); err != nil || got != -1 {
		t.Fatalf("Get(b) = %d, %v; want -1", got, err)
	}

	_, err := e.Get(ctx, keyC.Type())
	var mu *MissingUpstreamError
	if !errors.As(err, &mu) {
		t.Fatalf("Get(c) error = %v, want MissingUpstreamError", err)
	}
	if mu.Type != "a" || mu.Reason != "no phase data" {
		t.Fatalf("missing upstream = %+v", mu)
	}
	if diff := cmp.Diff(Chain{"c", "a"}, mu.Chain); diff != "" {
		t.Fatalf("chain mismatch (-want +got):\n%s", diff)
	}
	if fact.IsUnavailable(err) {
		t.Fatalf("a required-but-unavailable upstream must be a hard error")
	}
}

func TestGetOnUnavailableFactTopLevel(t *testing.T) {
	e := mustRegister(t,
		Provide(keyA, func(context.Context, Resolver) (num, error) { return 0, fact.Unavailable("nope") }),
	)
	_, err := e.Get(context.Background(), keyA.Type())
	var mu *MissingUpstreamError
	if !errors.As(err, &mu) {
		t.Fatalf("error = %v, want MissingUpstreamError", err)
	}
}

func TestDuplicateProvider(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Value(keyA, num(1)), Value(keyA, num(2)))
	var dup *DuplicateProviderError
	if !errors.As(err, &dup) || dup.Type != "a" {
		t.Fatalf("error = %v, want DuplicateProviderError for a", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry holds %d providers, want 1", reg.Len())
	}
}

func TestUnknownFact(t *testing.T) {
	e := mustRegister(t,
		Provide(keyA, func(ctx context.Context, r Resolver) (num, error) { return Get(ctx, r, keyC) }),
	)
	_, err := e.Get(context.Background(), keyA.Type())
	var unknown *UnknownFactError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownFactError", err)
	}
	if unknown.Type != "c" || unknown.Chain.String() != "a" {
		t.Fatalf("unknown = %+v", unknown)
	}
}

func TestTypeMismatch(t *testing.T) {
	e := mustRegister(t, Value(keyL, label("x")))
	wrong := fact.NewKey[num]("label")
	_, err := Get(context.Background(), e, wrong)
	var mm *TypeMismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("error = %v, want TypeMismatchError", err)
	}
	if !strings.Contains(mm.Error(), "engine.num") {
		t.Fatalf("message %q does not name the wanted type", mm.Error())
	}
}

func TestProviderPanicBecomesError(t *testing.T) {
	e := mustRegister(t,
		Provide(keyA, func(context.Context, Resolver) (num, error) { panic("kaboom") }),
	)
	_, err := e.Get(context.Background(), keyA.Type())
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("error = %v, want panic message", err)
	}
}

type boxed struct{ n int }

func (b *boxed) Description() string     { return "a boxed number" }
func (b *boxed) Summary() (string, bool) { return fmt.Sprint(b.n), true }

func TestTypedNilProviderResultIsAnError(t *testing.T) {
	keyBoxed := fact.NewKey[*boxed]("boxed")
	e := mustRegister(t,
		Provide(keyBoxed, func(context.Context, Resolver) (*boxed, error) { return nil, nil }),
	)
	_, err := Get(context.Background(), e, keyBoxed)
	var de *DerivationError
	if !errors.As(err, &de) || !strings.Contains(err.Error(), "provider returned no value") {
		t.Fatalf("error = %v, want a no-value derivation failure", err)
	}
}

func TestConcurrentRequestsShareOneDerivation(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	e := mustRegister(t,
		Provide(keyA, func(context.Context, Resolver) (num, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return 7, nil
		}),
	)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	results := make([]num, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = Get(ctx, e, keyA)
		}()
	}
	<-started
	close(release)
	wg.Wait()

	for i := range workers {
		if errs[i] != nil || results[i] != 7 {
			t.Fatalf("worker %d got %d, %v", i, results[i], errs[i])
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("provider invoked %d times, want 1", n)
	}
}

func TestCrossGoroutineCycleDoesNotDeadlock(t *testing.T) {
	aStarted := make(chan struct{})
	bStarted := make(chan struct{})
	e := mustRegister(t,
		Provide(keyA, func(ctx context.Context, r Resolver) (num, error) {
			close(aStarted)
			<-bStarted
			return Get(ctx, r, keyB)
		}),
		Provide(keyB, func(ctx context.Context, r Resolver) (num, error) {
			close(bStarted)
			<-aStarted
			return Get(ctx, r, keyA)
		}),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, key := range []fact.Key[num]{keyA, keyB} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = Get(ctx, e, key)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		var cyc *CycleError
		if !errors.As(err, &cyc) {
			t.Fatalf("request %d error = %v, want CycleError", i, err)
		}
		if len(cyc.Chain) != 3 || cyc.Chain[0] != cyc.Chain[2] {
			t.Fatalf("request %d cycle = %v", i, cyc.Chain)
		}
	}
}

func TestCancelledWaiterDoesNotPoisonCache(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	e := mustRegister(t,
		Provide(keyA, func(context.Context, Resolver) (num, error) {
			close(started)
			<-release
			return 3, nil
		}),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Get(context.Background(), e, keyA)
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Get(ctx, e, keyA); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled request error = %v", err)
	}

	close(release)
	<-done
	got, err := Get(context.Background(), e, keyA)
	if err != nil || got != 3 {
		t.Fatalf("Get(a) after cancellation = %d, %v", got, err)
	}
}

func TestCancelledDerivationIsNotCached(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	e := mustRegister(t,
		Value(keyB, num(4)),
		Provide(keyA, func(ctx context.Context, r Resolver) (num, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}
			b, err := Get(ctx, r, keyB)
			if err != nil {
				return 0, err
			}
			return b + 1, nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := Get(ctx, e, keyA)
		first <- err
	}()
	<-started

	type result struct {
		n   num
		err error
	}
	waiter := make(chan result, 1)
	go func() {
		n, err := Get(context.Background(), e, keyA)
		waiter <- result{n, err}
	}()

	cancel()
	close(release)

	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled derivation error = %v, want context.Canceled", err)
	}
	select {
	case res := <-waiter:
		if res.err != nil || res.n != 5 {
			t.Fatalf("waiter got %d, %v, want 5", res.n, res.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiter blocked after the deriving caller was cancelled")
	}

	got, err := Get(context.Background(), e, keyA)
	if err != nil || got != 5 {
		t.Fatalf("Get(a) after cancellation = %d, %v, want 5", got, err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("provider invoked %d times, want 2", n)
	}
}
