package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff Level = iota
	// LevelError keeps events only for dumps after a failed run.
	LevelError
	// LevelRun emits run and suggestion provider spans.
	LevelRun
	// LevelDebug emits everything, including every fact derivation.
	LevelDebug
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelRun:
		return "run"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "run":
		return LevelRun, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|run|debug)", s)
	}
}

// ShouldEmit reports whether events of the given scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelError:
		// ring tracers still record so a failed run can be dumped
		return true
	case LevelRun:
		return scope <= ScopeSuggestion
	case LevelDebug:
		return true
	}
	return false
}

// admits reports whether a sink at level records ev. Heartbeats pass at
// every enabled level.
func admits(level Level, ev *Event) bool {
	return ev.Kind == KindHeartbeat || level.ShouldEmit(ev.Scope)
}
