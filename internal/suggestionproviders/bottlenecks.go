package suggestionproviders

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"buildlens/internal/bottleneck"
	"buildlens/internal/dataproviders"
	"buildlens/internal/engine"
	"buildlens/internal/profile"
	"buildlens/internal/suggest"
)

// BottleneckOptions configures the Bottlenecks provider.
type BottleneckOptions struct {
	// MinDuration drops shorter bottlenecks.
	MinDuration time.Duration
	// MaxListed caps how many bottlenecks the rationale names.
	MaxListed int
	// MaxActions caps how many actions are named per bottleneck.
	MaxActions int
}

// Bottlenecks points at the longest stretches during which the build could
// not keep all cores busy.
type Bottlenecks struct {
	Opts BottleneckOptions
}

func (Bottlenecks) Name() string { return NameBottlenecks }

func (p Bottlenecks) Suggest(ctx context.Context, r engine.Resolver) suggest.Output {
	stats, ok, err := engine.GetOptional(ctx, r, dataproviders.ActionStatsKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}
	if !ok {
		return suggest.Empty(p.Name())
	}

	var relevant []bottleneck.Bottleneck
	for _, b := range stats.Bottlenecks {
		if b.Duration() >= p.Opts.MinDuration {
			relevant = append(relevant, b)
		}
	}
	if len(relevant) == 0 {
		return suggest.Empty(p.Name())
	}

	phases, hasPhases, err := engine.GetOptional(ctx, r, dataproviders.PhaseBoundariesKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}
	total, hasTotal, err := engine.GetOptional(ctx, r, dataproviders.TotalDurationKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}
	remote, hasRemote, err := engine.GetOptional(ctx, r, dataproviders.RemoteExecutionUsedKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}
	cores, hasCores, err := engine.GetOptional(ctx, r, dataproviders.CoreCountKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}

	sum := bottleneck.TotalDuration(relevant)
	s := suggest.New(
		NameBottlenecks,
		"Reduce action bottlenecks",
		fmt.Sprintf("Found %d periods, %s in total, during which fewer actions ran than cores were available. "+
			"Splitting the actions running during these periods into smaller ones, or removing dependencies between them, lets more work run in parallel.",
			len(relevant), profile.FormatDuration(sum)),
	)
	if hasTotal && total.D > 0 {
		s = s.WithRationale("Bottlenecks cover %.1f%% of the %s build.", 100*float64(sum)/float64(total.D), profile.FormatDuration(total.D))
	}

	longest := slices.Clone(relevant)
	slices.SortStableFunc(longest, func(a, b bottleneck.Bottleneck) int {
		return cmp.Compare(b.Duration(), a.Duration())
	})
	if p.Opts.MaxListed > 0 && len(longest) > p.Opts.MaxListed {
		longest = longest[:p.Opts.MaxListed]
	}
	for _, b := range longest {
		var where string
		if hasPhases {
			if ph, found := phases.PhaseAt(b.Start); found {
				where = fmt.Sprintf(" during %s", ph)
			}
		}
		load := fmt.Sprintf("%.1f actions running on average", b.Concurrency)
		if hasCores {
			load = fmt.Sprintf("%.1f of %d cores busy on average", b.Concurrency, cores.N)
		}
		s = s.WithRationale("%s at %s%s: %s; actions: %s",
			profile.FormatDuration(b.Duration()), b.Start, where, load, listActions(b.Actions, p.Opts.MaxActions))
	}

	if hasRemote && remote.Enabled {
		s = s.WithCaveat("The build used remote execution, so the local core count may not bound the parallelism actually available.")
	}
	return suggest.Of(p.Name(), s)
}

func listActions(actions []string, limit int) string {
	if limit <= 0 || len(actions) <= limit {
		return strings.Join(actions, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(actions[:limit], ", "), len(actions)-limit)
}
