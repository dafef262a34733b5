// Package suggestionproviders holds the built-in suggestion providers.
package suggestionproviders

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"buildlens/internal/suggest"
)

// Provider names, as used by --only and the disabled list in configuration.
const (
	NameSkymeld       = "use-skymeld"
	NameBottlenecks   = "action-bottlenecks"
	NameAnalysisShare = "analysis-share"
)

// Options configures the built-in providers.
type Options struct {
	Bottlenecks   BottleneckOptions
	AnalysisShare AnalysisShareOptions
}

// DefaultOptions returns the options used without configuration.
func DefaultOptions() Options {
	return Options{
		Bottlenecks: BottleneckOptions{
			MinDuration: 500 * time.Millisecond,
			MaxListed:   5,
			MaxActions:  5,
		},
		AnalysisShare: AnalysisShareOptions{Threshold: 0.25},
	}
}

// All returns every built-in provider, in report order.
func All(opts Options) []suggest.Provider {
	return []suggest.Provider{
		Skymeld{},
		Bottlenecks{Opts: opts.Bottlenecks},
		AnalysisShare{Opts: opts.AnalysisShare},
	}
}

// Names returns the names of all built-in providers.
func Names() []string {
	return []string{NameSkymeld, NameBottlenecks, NameAnalysisShare}
}

// Select filters providers. A non-empty only keeps just the named providers;
// disabled removes providers. Unknown names are an error.
func Select(providers []suggest.Provider, only, disabled []string) ([]suggest.Provider, error) {
	known := make([]string, len(providers))
	for i, p := range providers {
		known[i] = p.Name()
	}
	for _, n := range slices.Concat(only, disabled) {
		if !slices.Contains(known, n) {
			return nil, fmt.Errorf("unknown suggestion provider %q (known: %s)", n, strings.Join(known, ", "))
		}
	}

	var out []suggest.Provider
	for _, p := range providers {
		if len(only) > 0 && !slices.Contains(only, p.Name()) {
			continue
		}
		if slices.Contains(disabled, p.Name()) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
