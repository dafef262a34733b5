package suggestionproviders

import (
	"context"

	"buildlens/internal/dataproviders"
	"buildlens/internal/engine"
	"buildlens/internal/phase"
	"buildlens/internal/profile"
	"buildlens/internal/suggest"
)

// AnalysisShareOptions configures the AnalysisShare provider.
type AnalysisShareOptions struct {
	// Threshold is the share of the build above which loading and analysis
	// is reported, between 0 and 1.
	Threshold float64
}

// AnalysisShare reports builds that spend a large share of their time
// loading and analyzing before any action executes.
type AnalysisShare struct {
	Opts AnalysisShareOptions
}

func (AnalysisShare) Name() string { return NameAnalysisShare }

func (p AnalysisShare) Suggest(ctx context.Context, r engine.Resolver) suggest.Output {
	phases, ok, err := engine.GetOptional(ctx, r, dataproviders.PhaseBoundariesKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}
	if !ok {
		return suggest.Empty(p.Name())
	}
	total, ok, err := engine.GetOptional(ctx, r, dataproviders.TotalDurationKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}
	if !ok || total.D <= 0 {
		return suggest.Empty(p.Name())
	}

	startPhase, start, ok := phases.GetOrClosestAfter(phase.Evaluate)
	if !ok {
		return suggest.Empty(p.Name())
	}
	execPhase, exec, ok := phases.GetOrClosestAfter(phase.Execute)
	if !ok || execPhase == startPhase {
		return suggest.Empty(p.Name())
	}
	analysis := exec.Start.Sub(start.Start)
	if analysis <= 0 {
		return suggest.Empty(p.Name())
	}
	share := float64(analysis) / float64(total.D)
	if share <= p.Opts.Threshold {
		return suggest.Empty(p.Name())
	}

	s := suggest.New(
		NameAnalysisShare,
		"Reduce loading and analysis time",
		"Keep the build server running between invocations and avoid changing options that discard the analysis cache.",
	).WithRationale("Loading and analysis took %s, %.0f%% of the %s build.",
		profile.FormatDuration(analysis), 100*share, profile.FormatDuration(total.D))

	if startPhase != phase.Evaluate || execPhase != phase.Execute {
		s = s.WithCaveat("The profile does not record both the %s and %s phases; the estimate starts at %s and ends at %s.",
			phase.Evaluate, phase.Execute, startPhase, execPhase)
	}
	return suggest.Of(p.Name(), s)
}
