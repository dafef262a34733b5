package dataproviders

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"

	"buildlens/internal/bottleneck"
	"buildlens/internal/engine"
	"buildlens/internal/fact"
	"buildlens/internal/phase"
	"buildlens/internal/profile"
)

// Register validates snap against order and registers every provider of this
// package in reg. Phase markers outside order fail with *phase.UnknownPhaseError.
func Register(reg *engine.Registry, snap *profile.Snapshot, order phase.Order) error {
	if snap == nil {
		return errors.New("dataproviders: nil snapshot")
	}
	for _, pm := range snap.Phases {
		if p := phase.Phase(pm.Phase); !order.Contains(p) {
			return &phase.UnknownPhaseError{Phase: p, Order: order}
		}
	}
	return reg.Register(
		engine.Provide(CoreCountKey, coreCount(snap)),
		engine.Provide(ActionTimelineKey, actionTimeline(snap)),
		engine.Provide(PhaseBoundariesKey, phaseBoundaries(snap, order)),
		engine.Value(ToolVersionKey, ParseToolVersion(snap.ToolVersion)),
		engine.Provide(SkymeldUsedKey, featureFlag(snap, TypeSkymeldUsed)),
		engine.Provide(RemoteExecutionUsedKey, featureFlag(snap, TypeRemoteExecutionUsed)),
		engine.Provide(ActionStatsKey, deriveActionStats),
		engine.Provide(TotalDurationKey, deriveTotalDuration),
	)
}

func coreCount(snap *profile.Snapshot) func(context.Context, engine.Resolver) (CoreCount, error) {
	return func(context.Context, engine.Resolver) (CoreCount, error) {
		if snap.Cores == 0 {
			return CoreCount{}, fact.Unavailable("profile does not record the core count")
		}
		n, err := safecast.Conv[int](snap.Cores)
		if err != nil {
			return CoreCount{}, fmt.Errorf("core count %d: %w", snap.Cores, err)
		}
		return CoreCount{N: n}, nil
	}
}

func actionTimeline(snap *profile.Snapshot) func(context.Context, engine.Resolver) (ActionTimeline, error) {
	return func(context.Context, engine.Resolver) (ActionTimeline, error) {
		if snap.Timeline.Empty() {
			return ActionTimeline{}, fact.Unavailable("profile has no action samples")
		}
		return ActionTimeline{Timeline: snap.Timeline}, nil
	}
}

func phaseBoundaries(snap *profile.Snapshot, order phase.Order) func(context.Context, engine.Resolver) (PhaseBoundaries, error) {
	return func(context.Context, engine.Resolver) (PhaseBoundaries, error) {
		if len(snap.Phases) == 0 {
			return PhaseBoundaries{}, fact.Unavailable("profile has no phase markers")
		}
		b := phase.NewBuilder(order)
		for _, pm := range snap.Phases {
			if err := b.Add(phase.Phase(pm.Phase), phase.Interval{Start: pm.Start, End: pm.End}); err != nil {
				return PhaseBoundaries{}, err
			}
		}
		return PhaseBoundaries{Boundaries: b.Build()}, nil
	}
}

func featureFlag(snap *profile.Snapshot, t fact.Type) func(context.Context, engine.Resolver) (FeatureFlag, error) {
	name := string(t)
	return func(context.Context, engine.Resolver) (FeatureFlag, error) {
		enabled, ok := snap.Flag(name)
		if !ok {
			return FeatureFlag{}, fact.Unavailable("profile does not record whether %s", name)
		}
		return FeatureFlag{Name: name, Enabled: enabled}, nil
	}
}

func deriveActionStats(ctx context.Context, r engine.Resolver) (ActionStats, error) {
	cores, ok, err := engine.GetOptional(ctx, r, CoreCountKey)
	if err != nil {
		return ActionStats{}, err
	}
	if !ok {
		return ActionStats{}, fact.Unavailable("bottleneck detection needs the core count")
	}
	tl, ok, err := engine.GetOptional(ctx, r, ActionTimelineKey)
	if err != nil {
		return ActionStats{}, err
	}
	if !ok {
		return ActionStats{}, fact.Unavailable("bottleneck detection needs the action timeline")
	}

	bs, err := bottleneck.Detect(tl.Timeline, cores.N)
	if err != nil {
		return ActionStats{}, err
	}
	return ActionStats{Bottlenecks: bs}, nil
}

func deriveTotalDuration(ctx context.Context, r engine.Resolver) (TotalDuration, error) {
	phases, ok, err := engine.GetOptional(ctx, r, PhaseBoundariesKey)
	if err != nil {
		return TotalDuration{}, err
	}
	if ok {
		if span, found := phases.Span(); found && span.Duration() > 0 {
			return TotalDuration{D: span.Duration(), Source: "phase markers"}, nil
		}
	}

	tl, ok, err := engine.GetOptional(ctx, r, ActionTimelineKey)
	if err != nil {
		return TotalDuration{}, err
	}
	if ok && tl.Span() > 0 {
		return TotalDuration{D: tl.Span(), Source: "action timeline"}, nil
	}
	return TotalDuration{}, fact.Unavailable("profile records neither phases nor actions")
}
