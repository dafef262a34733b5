// Package profile holds the raw facts captured from one build invocation:
// the action-concurrency timeline, phase markers, core count, tool version
// and feature flags. Parsing the build tool's own trace format happens
// upstream; this package only reads and writes the pre-parsed snapshot.
package profile

import (
	"fmt"
	"time"
)

// SchemaVersion is bumped whenever the Snapshot layout changes.
const SchemaVersion uint16 = 1

// Timestamp is a point in the profile, in microseconds since the profile started.
type Timestamp int64

// Sub returns the duration t-u.
func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(t-u) * time.Microsecond
}

func (t Timestamp) String() string {
	return FormatDuration(t.Sub(0))
}

// FormatDuration renders d the way reports print durations: milliseconds
// precision above one millisecond, raw otherwise.
func FormatDuration(d time.Duration) string {
	if d >= time.Millisecond || d <= -time.Millisecond {
		return d.Round(time.Millisecond).String()
	}
	return d.String()
}

// Sample records the actions running from At until the next sample (or the
// timeline end for the last one).
type Sample struct {
	At      Timestamp `msgpack:"at" json:"at"`
	Running []string  `msgpack:"running" json:"running"`
}

// Timeline is the action-concurrency timeline of a build.
type Timeline struct {
	Samples []Sample  `msgpack:"samples" json:"samples"`
	End     Timestamp `msgpack:"end" json:"end"`
}

// Empty reports whether the timeline has no samples.
func (tl Timeline) Empty() bool { return len(tl.Samples) == 0 }

// PhaseMarker is one build phase as recorded in the trace.
type PhaseMarker struct {
	Phase string    `msgpack:"phase" json:"phase"`
	Start Timestamp `msgpack:"start" json:"start"`
	End   Timestamp `msgpack:"end" json:"end"`
}

// Snapshot is the raw-fact source of one analysis run.
type Snapshot struct {
	Schema      uint16          `msgpack:"schema" json:"schema"`
	ToolVersion string          `msgpack:"tool_version" json:"tool_version"`
	Cores       uint32          `msgpack:"cores" json:"cores"` // 0 when unknown
	Timeline    Timeline        `msgpack:"timeline" json:"timeline"`
	Phases      []PhaseMarker   `msgpack:"phases" json:"phases"`
	Flags       map[string]bool `msgpack:"flags" json:"flags"`
}

// Flag returns the value of a feature flag and whether the trace recorded it.
func (s *Snapshot) Flag(name string) (value, ok bool) {
	if s == nil || s.Flags == nil {
		return false, false
	}
	value, ok = s.Flags[name]
	return value, ok
}

// Validate checks the structural constraints a decoded snapshot must meet.
// Sample ordering is left to the consumers that depend on it.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("profile: nil snapshot")
	}
	if s.Schema != SchemaVersion {
		return &SchemaError{Got: s.Schema, Want: SchemaVersion}
	}
	for i, sm := range s.Timeline.Samples {
		if sm.At < 0 {
			return fmt.Errorf("profile: sample %d has negative timestamp %d", i, sm.At)
		}
		if sm.At > s.Timeline.End {
			return fmt.Errorf("profile: sample %d at %d lies past the timeline end %d", i, sm.At, s.Timeline.End)
		}
	}
	seen := make(map[string]bool, len(s.Phases))
	for _, pm := range s.Phases {
		if pm.Phase == "" {
			return fmt.Errorf("profile: phase marker without a name")
		}
		if seen[pm.Phase] {
			return fmt.Errorf("profile: phase %s recorded twice", pm.Phase)
		}
		seen[pm.Phase] = true
		if pm.End < pm.Start {
			return fmt.Errorf("profile: phase %s ends at %d before it starts at %d", pm.Phase, pm.End, pm.Start)
		}
	}
	return nil
}

// SchemaError reports a snapshot written with a different schema version.
type SchemaError struct {
	Got, Want uint16
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("profile: unsupported snapshot schema %d (want %d)", e.Got, e.Want)
}
