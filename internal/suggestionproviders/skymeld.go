package suggestionproviders

import (
	"context"

	"buildlens/internal/dataproviders"
	"buildlens/internal/engine"
	"buildlens/internal/suggest"
)

const skymeldMinVersion = "v7.0.0"

// Skymeld suggests interleaving analysis and execution when the build kept
// them as separate phases.
type Skymeld struct{}

func (Skymeld) Name() string { return NameSkymeld }

func (p Skymeld) Suggest(ctx context.Context, r engine.Resolver) suggest.Output {
	used, ok, err := engine.GetOptional(ctx, r, dataproviders.SkymeldUsedKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}
	if !ok || used.Enabled {
		return suggest.Empty(p.Name())
	}

	version, err := engine.Get(ctx, r, dataproviders.ToolVersionKey)
	if err != nil {
		return suggest.Failed(p.Name(), err)
	}

	s := suggest.New(
		NameSkymeld,
		"Interleave analysis and execution",
		"Pass --experimental_merged_skyframe_analysis_execution so actions start running before the whole build graph has been analyzed.",
	).WithRationale("The profile shows analysis and execution ran one after the other.")

	minVersion := skymeldMinVersion[1:]
	switch {
	case !version.Known():
		s = s.WithCaveat("The tool version could not be determined. Merged analysis and execution needs version %s or newer.", minVersion)
	case !version.AtLeast(skymeldMinVersion):
		s = s.WithCaveat("The build used version %s. Merged analysis and execution needs version %s or newer, so upgrade first.", version, minVersion)
	}
	return suggest.Of(p.Name(), s)
}
