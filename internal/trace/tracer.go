package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// Tracer receives trace events. Implementations must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	// Close flushes and releases the output.
	Close() error
	Level() Level
	Enabled() bool
}

// leveled implements the Level and Enabled half of Tracer.
type leveled struct{ level Level }

func (l leveled) Level() Level  { return l.level }
func (l leveled) Enabled() bool { return l.level > LevelOff }

// StorageMode selects where events go. Modes combine as bit flags.
type StorageMode uint8

const (
	ModeStream StorageMode = 1 << iota // written as they happen
	ModeRing                           // kept in memory for failure dumps
	ModeBoth   = ModeStream | ModeRing
)

var modeNames = []struct {
	name string
	mode StorageMode
}{
	{"stream", ModeStream},
	{"ring", ModeRing},
	{"both", ModeBoth},
}

func (m StorageMode) String() string {
	for _, n := range modeNames {
		if n.mode == m {
			return n.name
		}
	}
	return "unknown"
}

// ParseMode parses stream, ring or both.
func ParseMode(s string) (StorageMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range modeNames {
		if n.name == s {
			return n.mode, nil
		}
	}
	return 0, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes the tracer built by New.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format
	Output     io.Writer // stream destination; OutputPath is opened when nil
	OutputPath string    // "" or "-" is stderr
	RingSize   int
}

func (cfg Config) format() Format {
	switch {
	case cfg.Format != FormatAuto:
		return cfg.Format
	case strings.HasSuffix(cfg.OutputPath, ".ndjson"):
		return FormatNDJSON
	default:
		return FormatText
	}
}

// New builds the tracer described by cfg. A disabled level yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == 0 || cfg.Mode&^ModeBoth != 0 {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	var sinks []Tracer
	if cfg.Mode&ModeStream != 0 {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, cfg.format()))
	}
	if cfg.Mode&ModeRing != 0 {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiTracer(cfg.Level, sinks...), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		// wrapped so Close leaves stderr open
		return struct{ io.Writer }{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}
