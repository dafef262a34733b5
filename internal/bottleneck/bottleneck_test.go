package bottleneck

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"buildlens/internal/profile"
)

// timeline builds samples 10µs apart with the given running sets.
func timeline(running ...[]string) profile.Timeline {
	tl := profile.Timeline{}
	for i, r := range running {
		tl.Samples = append(tl.Samples, profile.Sample{At: profile.Timestamp(i * 10), Running: r})
	}
	tl.End = profile.Timestamp(len(running) * 10)
	return tl
}

var five = []string{"v", "w", "x", "y", "z"}

func TestDetectMergesAcrossCapacitySample(t *testing.T) {
	tl := timeline(
		five,
		[]string{"a", "b", "c"},
		[]string{"a", "b"},
		[]string{"a", "b", "f", "g"},
		[]string{"h"},
		five,
	)
	got, err := Detect(tl, 4)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	want := []Bottleneck{{
		Start:       10,
		End:         50,
		Actions:     []string{"a", "b", "c", "f", "g", "h"},
		Concurrency: 2.5,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bottlenecks mismatch (-want +got):\n%s", diff)
	}
	if d := got[0].Duration(); d != 40*time.Microsecond {
		t.Fatalf("Duration = %v", d)
	}
}

func TestDetectNoBottlenecks(t *testing.T) {
	tl := timeline(five, []string{"a", "b", "c", "d"}, five)
	got, err := Detect(tl, 4)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d bottlenecks, want none: %+v", len(got), got)
	}
}

func TestDetectRunsAtEdges(t *testing.T) {
	tl := timeline([]string{"a"}, five, []string{"b"}, []string{"b", "c", "d", "e"})
	got, err := Detect(tl, 4)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	want := []Bottleneck{
		{Start: 0, End: 10, Actions: []string{"a"}, Concurrency: 1},
		{Start: 20, End: 30, Actions: []string{"b"}, Concurrency: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bottlenecks mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectDropsIdleRuns(t *testing.T) {
	tl := timeline(nil, nil, five, []string{"a"})
	got, err := Detect(tl, 4)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(got) != 1 || got[0].Start != 30 {
		t.Fatalf("got %+v, want only the run at 30", got)
	}
}

func TestDetectMergesContiguousRuns(t *testing.T) {
	tl := profile.Timeline{
		Samples: []profile.Sample{
			{At: 0, Running: []string{"a"}},
			{At: 10, Running: five},
			{At: 10, Running: []string{"b"}},
		},
		End: 20,
	}
	got, err := Detect(tl, 4)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	want := []Bottleneck{{Start: 0, End: 20, Actions: []string{"a", "b"}, Concurrency: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bottlenecks mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectRejectsUnorderedSamples(t *testing.T) {
	tl := profile.Timeline{
		Samples: []profile.Sample{{At: 10}, {At: 5}},
		End:     20,
	}
	_, err := Detect(tl, 2)
	var oe *OrderError
	if !errors.As(err, &oe) || oe.Index != 1 {
		t.Fatalf("error = %v, want OrderError at 1", err)
	}
}

func TestDetectRejectsBadCores(t *testing.T) {
	if _, err := Detect(timeline([]string{"a"}), 0); err == nil {
		t.Fatal("zero cores accepted")
	}
}

func TestTotalDuration(t *testing.T) {
	bs := []Bottleneck{{Start: 0, End: 1000}, {Start: 2000, End: 4000}}
	if got := TotalDuration(bs); got != 3*time.Millisecond {
		t.Fatalf("TotalDuration = %v", got)
	}
}
