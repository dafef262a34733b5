// Package bottleneck finds the stretches of a build where fewer actions ran
// than there were cores to run them.
package bottleneck

import (
	"fmt"
	"slices"
	"time"

	"buildlens/internal/profile"
)

// Bottleneck is a period [Start, End) of under-utilization.
type Bottleneck struct {
	Start profile.Timestamp
	End   profile.Timestamp
	// Actions running at any point during the bottleneck, sorted and unique.
	Actions []string
	// Concurrency is the time-weighted average number of running actions.
	Concurrency float64
}

// Duration returns End-Start; always positive for detected bottlenecks.
func (b Bottleneck) Duration() time.Duration { return b.End.Sub(b.Start) }

// OrderError reports a timeline whose samples are not in time order.
type OrderError struct {
	Index    int
	At, Prev profile.Timestamp
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("bottleneck: sample %d at %d precedes the previous sample at %d", e.Index, e.At, e.Prev)
}

// Detect sweeps tl and returns its bottlenecks in time order.
//
// A sample with fewer running actions than cores opens or extends a run.
// Samples exactly at capacity are held back: they join the run only when
// another under-capacity sample follows. A sample above capacity, or the end
// of the timeline, closes the run. Runs without any running action and runs
// of zero length are dropped.
func Detect(tl profile.Timeline, cores int) ([]Bottleneck, error) {
	if cores <= 0 {
		return nil, fmt.Errorf("bottleneck: core count must be positive, got %d", cores)
	}
	if err := checkOrder(tl); err != nil {
		return nil, err
	}

	var out []Bottleneck
	emit := func(first, last int) {
		b, ok := collect(tl, first, last)
		if !ok {
			return
		}
		if n := len(out); n > 0 && out[n-1].End == b.Start {
			out[n-1] = merge(out[n-1], b)
			return
		}
		out = append(out, b)
	}

	open, lastBelow := -1, -1
	for i, s := range tl.Samples {
		switch n := len(s.Running); {
		case n < cores:
			if open < 0 {
				open = i
			}
			lastBelow = i
		case n == cores:
			// held until the next under-capacity sample
		default:
			if open >= 0 {
				emit(open, lastBelow)
				open = -1
			}
		}
	}
	if open >= 0 {
		emit(open, lastBelow)
	}
	return out, nil
}

func checkOrder(tl profile.Timeline) error {
	for i := 1; i < len(tl.Samples); i++ {
		if tl.Samples[i].At < tl.Samples[i-1].At {
			return &OrderError{Index: i, At: tl.Samples[i].At, Prev: tl.Samples[i-1].At}
		}
	}
	if n := len(tl.Samples); n > 0 && tl.End < tl.Samples[n-1].At {
		return fmt.Errorf("bottleneck: timeline ends at %d before its last sample at %d", tl.End, tl.Samples[n-1].At)
	}
	return nil
}

// sampleEnd returns the exclusive end of sample i.
func sampleEnd(tl profile.Timeline, i int) profile.Timestamp {
	if i+1 < len(tl.Samples) {
		return tl.Samples[i+1].At
	}
	return tl.End
}

// collect builds the bottleneck covering samples first..last inclusive.
func collect(tl profile.Timeline, first, last int) (Bottleneck, bool) {
	b := Bottleneck{Start: tl.Samples[first].At, End: sampleEnd(tl, last)}
	if b.End <= b.Start {
		return Bottleneck{}, false
	}

	seen := make(map[string]struct{})
	var weighted float64
	for i := first; i <= last; i++ {
		s := tl.Samples[i]
		for _, a := range s.Running {
			if _, dup := seen[a]; !dup {
				seen[a] = struct{}{}
				b.Actions = append(b.Actions, a)
			}
		}
		weighted += float64(len(s.Running)) * float64(sampleEnd(tl, i)-s.At)
	}
	if len(b.Actions) == 0 {
		return Bottleneck{}, false
	}
	slices.Sort(b.Actions)
	b.Concurrency = weighted / float64(b.End-b.Start)
	return b, true
}

func merge(a, b Bottleneck) Bottleneck {
	da, db := float64(a.End-a.Start), float64(b.End-b.Start)
	actions := append(slices.Clone(a.Actions), b.Actions...)
	slices.Sort(actions)
	return Bottleneck{
		Start:       a.Start,
		End:         b.End,
		Actions:     slices.Compact(actions),
		Concurrency: (a.Concurrency*da + b.Concurrency*db) / (da + db),
	}
}

// TotalDuration sums the durations of bs.
func TotalDuration(bs []Bottleneck) time.Duration {
	var total time.Duration
	for _, b := range bs {
		total += b.Duration()
	}
	return total
}
