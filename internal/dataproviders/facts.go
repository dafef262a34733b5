// Package dataproviders defines the concrete facts of a build profile and the
// providers deriving them from a profile.Snapshot.
package dataproviders

import (
	"fmt"
	"time"

	"buildlens/internal/bottleneck"
	"buildlens/internal/fact"
	"buildlens/internal/phase"
	"buildlens/internal/profile"
)

// Fact types provided by this package.
const (
	TypeCoreCount           fact.Type = "core-count"
	TypeActionTimeline      fact.Type = "action-timeline"
	TypePhaseBoundaries     fact.Type = "phase-boundaries"
	TypeToolVersion         fact.Type = "tool-version"
	TypeActionStats         fact.Type = "action-stats"
	TypeTotalDuration       fact.Type = "total-duration"
	TypeSkymeldUsed         fact.Type = "skymeld-used"
	TypeRemoteExecutionUsed fact.Type = "remote-execution-used"
)

var (
	CoreCountKey           = fact.NewKey[CoreCount](TypeCoreCount)
	ActionTimelineKey      = fact.NewKey[ActionTimeline](TypeActionTimeline)
	PhaseBoundariesKey     = fact.NewKey[PhaseBoundaries](TypePhaseBoundaries)
	ToolVersionKey         = fact.NewKey[ToolVersion](TypeToolVersion)
	ActionStatsKey         = fact.NewKey[ActionStats](TypeActionStats)
	TotalDurationKey       = fact.NewKey[TotalDuration](TypeTotalDuration)
	SkymeldUsedKey         = fact.NewKey[FeatureFlag](TypeSkymeldUsed)
	RemoteExecutionUsedKey = fact.NewKey[FeatureFlag](TypeRemoteExecutionUsed)
)

// CoreCount is the number of cores available for local execution.
type CoreCount struct {
	N int
}

func (CoreCount) Description() string { return "Number of cores available to the build." }

func (c CoreCount) Summary() (string, bool) {
	return fmt.Sprintf("%d cores", c.N), true
}

// ActionTimeline is the action-concurrency timeline of the build.
type ActionTimeline struct {
	profile.Timeline
}

func (ActionTimeline) Description() string {
	return "Actions running over time, sampled whenever the set changes."
}

func (t ActionTimeline) Summary() (string, bool) {
	return fmt.Sprintf("%d samples over %s", len(t.Samples), profile.FormatDuration(t.Span())), true
}

// Span returns the time between the first sample and the timeline end.
func (t ActionTimeline) Span() time.Duration {
	if t.Empty() {
		return 0
	}
	return t.End.Sub(t.Samples[0].At)
}

// PhaseBoundaries are the recorded build phases.
type PhaseBoundaries struct {
	*phase.Boundaries
}

func (PhaseBoundaries) Description() string {
	return "Start and end of every build phase recorded in the profile."
}

func (p PhaseBoundaries) Summary() (string, bool) {
	return fmt.Sprintf("%d of %d phases recorded", p.Len(), p.Order().Len()), true
}

// FeatureFlag records whether a build feature was in use.
type FeatureFlag struct {
	Name    string
	Enabled bool
}

func (f FeatureFlag) Description() string {
	return fmt.Sprintf("Whether the build used %s.", f.Name)
}

func (f FeatureFlag) Summary() (string, bool) {
	if !f.Enabled {
		return "", false
	}
	return f.Name + " enabled", true
}

// ActionStats holds the bottlenecks of the action timeline.
type ActionStats struct {
	Bottlenecks []bottleneck.Bottleneck
}

func (ActionStats) Description() string {
	return "Periods during which fewer actions ran than cores were available."
}

func (s ActionStats) Summary() (string, bool) {
	if len(s.Bottlenecks) == 0 {
		return "", false
	}
	return fmt.Sprintf("%d bottlenecks found for a total duration of %s.",
		len(s.Bottlenecks), profile.FormatDuration(bottleneck.TotalDuration(s.Bottlenecks))), true
}

// TotalDuration is the wall time of the build.
type TotalDuration struct {
	D time.Duration
	// Source names what the duration was measured from.
	Source string
}

func (TotalDuration) Description() string { return "Wall time of the build invocation." }

func (t TotalDuration) Summary() (string, bool) {
	return fmt.Sprintf("%s (from %s)", profile.FormatDuration(t.D), t.Source), true
}
