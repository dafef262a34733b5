// Package config loads buildlens.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"buildlens/internal/phase"
	"buildlens/internal/suggestionproviders"
)

// FileName is the configuration file looked up from the working directory upward.
const FileName = "buildlens.toml"

// Config is the analyzer configuration.
type Config struct {
	// Path of the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`

	Analysis    Analysis    `toml:"analysis"`
	Suggestions Suggestions `toml:"suggestions"`
}

type Analysis struct {
	// Jobs bounds parallel suggestion providers; 0 uses GOMAXPROCS.
	Jobs       int      `toml:"jobs"`
	PhaseOrder []string `toml:"phase_order"`
}

type Suggestions struct {
	Disabled      []string             `toml:"disabled"`
	Bottlenecks   BottleneckSection    `toml:"bottlenecks"`
	AnalysisShare AnalysisShareSection `toml:"analysis_share"`
}

type BottleneckSection struct {
	MinDuration Duration `toml:"min_duration"`
	MaxListed   int      `toml:"max_listed"`
	MaxActions  int      `toml:"max_actions"`
}

type AnalysisShareSection struct {
	Threshold float64 `toml:"threshold"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() Config {
	opts := suggestionproviders.DefaultOptions()
	return Config{
		Suggestions: Suggestions{
			Bottlenecks: BottleneckSection{
				MinDuration: Duration{opts.Bottlenecks.MinDuration},
				MaxListed:   opts.Bottlenecks.MaxListed,
				MaxActions:  opts.Bottlenecks.MaxActions,
			},
			AnalysisShare: AnalysisShareSection{Threshold: opts.AnalysisShare.Threshold},
		},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load reads path on top of the defaults and validates the result. Unknown
// keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads explicit when set, otherwise the nearest FileName above
// startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if c.Analysis.Jobs < 0 {
		return fmt.Errorf("[analysis].jobs must not be negative, got %d", c.Analysis.Jobs)
	}
	if _, err := c.PhaseOrder(); err != nil {
		return fmt.Errorf("[analysis].phase_order: %w", err)
	}
	known := suggestionproviders.Names()
	for _, name := range c.Suggestions.Disabled {
		if !slices.Contains(known, name) {
			return fmt.Errorf("[suggestions].disabled: unknown provider %q (known: %s)", name, strings.Join(known, ", "))
		}
	}
	b := c.Suggestions.Bottlenecks
	if b.MinDuration.Duration < 0 {
		return fmt.Errorf("[suggestions.bottlenecks].min_duration must not be negative, got %s", b.MinDuration)
	}
	if b.MaxListed < 0 || b.MaxActions < 0 {
		return fmt.Errorf("[suggestions.bottlenecks] limits must not be negative")
	}
	if t := c.Suggestions.AnalysisShare.Threshold; t <= 0 || t >= 1 {
		return fmt.Errorf("[suggestions.analysis_share].threshold must be between 0 and 1, got %g", t)
	}
	return nil
}

// PhaseOrder returns the configured phase order, or phase.DefaultOrder.
func (c Config) PhaseOrder() (phase.Order, error) {
	if len(c.Analysis.PhaseOrder) == 0 {
		return phase.DefaultOrder, nil
	}
	return phase.ParseOrder(c.Analysis.PhaseOrder)
}

// ProviderOptions maps the suggestion sections onto provider options.
func (c Config) ProviderOptions() suggestionproviders.Options {
	return suggestionproviders.Options{
		Bottlenecks: suggestionproviders.BottleneckOptions{
			MinDuration: c.Suggestions.Bottlenecks.MinDuration.Duration,
			MaxListed:   c.Suggestions.Bottlenecks.MaxListed,
			MaxActions:  c.Suggestions.Bottlenecks.MaxActions,
		},
		AnalysisShare: suggestionproviders.AnalysisShareOptions{
			Threshold: c.Suggestions.AnalysisShare.Threshold,
		},
	}
}
