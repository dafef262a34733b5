package dataproviders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"buildlens/internal/engine"
	"buildlens/internal/phase"
	"buildlens/internal/profile"
)

func newEngine(t *testing.T, snap *profile.Snapshot) *engine.Engine {
	t.Helper()
	reg := engine.NewRegistry()
	if err := Register(reg, snap, phase.DefaultOrder); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return engine.New(reg)
}

func fullSnapshot() *profile.Snapshot {
	five := []string{"v", "w", "x", "y", "z"}
	return &profile.Snapshot{
		Schema:      profile.SchemaVersion,
		ToolVersion: "release 6.4.0",
		Cores:       4,
		Timeline: profile.Timeline{
			Samples: []profile.Sample{
				{At: 0, Running: five},
				{At: 1000, Running: []string{"a"}},
				{At: 3000, Running: five},
			},
			End: 4000,
		},
		Phases: []profile.PhaseMarker{
			{Phase: "LAUNCH", Start: 0, End: 100},
			{Phase: "EXECUTE", Start: 100, End: 5000},
		},
		Flags: map[string]bool{"skymeld-used": true},
	}
}

func TestActionStats(t *testing.T) {
	e := newEngine(t, fullSnapshot())
	stats, err := engine.Get(context.Background(), e, ActionStatsKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(stats.Bottlenecks) != 1 {
		t.Fatalf("got %d bottlenecks, want 1", len(stats.Bottlenecks))
	}
	summary, ok := stats.Summary()
	if !ok || summary != "1 bottlenecks found for a total duration of 2ms." {
		t.Fatalf("summary = %q, %v", summary, ok)
	}
}

func TestActionStatsSummaryAbsentWhenEmpty(t *testing.T) {
	if s, ok := (ActionStats{}).Summary(); ok {
		t.Fatalf("empty stats summary = %q", s)
	}
}

func TestActionStatsUnavailableWithoutCores(t *testing.T) {
	snap := fullSnapshot()
	snap.Cores = 0
	e := newEngine(t, snap)
	ctx := context.Background()

	if _, ok, err := engine.GetOptional(ctx, e, ActionStatsKey); ok || err != nil {
		t.Fatalf("GetOptional = %v, %v; want absent", ok, err)
	}
	_, err := engine.Get(ctx, e, ActionStatsKey)
	var mu *engine.MissingUpstreamError
	if !errors.As(err, &mu) {
		t.Fatalf("Get error = %v, want MissingUpstreamError", err)
	}
}

func TestActionStatsFailsOnUnorderedTimeline(t *testing.T) {
	snap := fullSnapshot()
	snap.Timeline.Samples[1].At = 5000
	snap.Timeline.End = 6000
	e := newEngine(t, snap)

	_, err := engine.Get(context.Background(), e, ActionStatsKey)
	var de *engine.DerivationError
	if !errors.As(err, &de) || de.Type != TypeActionStats {
		t.Fatalf("error = %v, want DerivationError for action-stats", err)
	}
}

func TestTotalDurationPrefersPhases(t *testing.T) {
	e := newEngine(t, fullSnapshot())
	got, err := engine.Get(context.Background(), e, TotalDurationKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := TotalDuration{D: 5 * time.Millisecond, Source: "phase markers"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("total duration mismatch (-want +got):\n%s", diff)
	}
}

func TestTotalDurationFallsBackToTimeline(t *testing.T) {
	snap := fullSnapshot()
	snap.Phases = nil
	e := newEngine(t, snap)
	got, err := engine.Get(context.Background(), e, TotalDurationKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.D != 4*time.Millisecond || got.Source != "action timeline" {
		t.Fatalf("total duration = %+v", got)
	}
}

func TestFeatureFlags(t *testing.T) {
	e := newEngine(t, fullSnapshot())
	ctx := context.Background()

	sky, err := engine.Get(ctx, e, SkymeldUsedKey)
	if err != nil || !sky.Enabled {
		t.Fatalf("skymeld flag = %+v, %v", sky, err)
	}
	if _, ok, err := engine.GetOptional(ctx, e, RemoteExecutionUsedKey); ok || err != nil {
		t.Fatalf("unrecorded flag = %v, %v; want absent", ok, err)
	}
}

func TestRegisterRejectsUnknownPhase(t *testing.T) {
	snap := fullSnapshot()
	snap.Phases = append(snap.Phases, profile.PhaseMarker{Phase: "LINK", Start: 1, End: 2})
	err := Register(engine.NewRegistry(), snap, phase.DefaultOrder)
	var up *phase.UnknownPhaseError
	if !errors.As(err, &up) || up.Phase != "LINK" {
		t.Fatalf("error = %v, want UnknownPhaseError", err)
	}
}

func TestRegisterTwiceIsAmbiguous(t *testing.T) {
	reg := engine.NewRegistry()
	if err := Register(reg, fullSnapshot(), phase.DefaultOrder); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := Register(reg, fullSnapshot(), phase.DefaultOrder)
	var dup *engine.DuplicateProviderError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want DuplicateProviderError", err)
	}
}

func TestParseToolVersion(t *testing.T) {
	tests := []struct {
		raw     string
		known   bool
		str     string
		atLeast bool
	}{
		{"release 7.0.0", true, "7.0.0", true},
		{"release 5.3.1", true, "5.3.1", false},
		{"release 7.1.2-pre.20240101.1", true, "7.1.2-pre.20240101.1", true},
		{"development version", false, "unknown", false},
		{"", false, "unknown", false},
	}
	for _, tt := range tests {
		v := ParseToolVersion(tt.raw)
		if v.Known() != tt.known || v.String() != tt.str || v.AtLeast("v7.0.0") != tt.atLeast {
			t.Errorf("ParseToolVersion(%q) = known %v str %q atLeast %v", tt.raw, v.Known(), v.String(), v.AtLeast("v7.0.0"))
		}
	}
}
