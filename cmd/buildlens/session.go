package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"buildlens/internal/config"
	"buildlens/internal/dataproviders"
	"buildlens/internal/engine"
	"buildlens/internal/logging"
	"buildlens/internal/observ"
	"buildlens/internal/phase"
	"buildlens/internal/prof"
	"buildlens/internal/profile"
)

// session holds the per-invocation state shared by the analysis commands.
type session struct {
	cmd     *cobra.Command
	color   bool
	quiet   bool
	timings bool
	timer   *observ.Timer

	tracing *tracing
	prof    *prof.Session
}

func openSession(cmd *cobra.Command) (*session, error) {
	root := cmd.Root()
	colorMode, err := root.PersistentFlags().GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := root.PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := root.PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}

	useColor, err := resolveColor(colorMode, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	logLevel, err := logging.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, logging.New(cmd.ErrOrStderr(), logLevel)))

	tr, err := setupTracing(cmd)
	if err != nil {
		return nil, err
	}
	ps, err := setupProfiling(cmd)
	if err != nil {
		tr.close(cmd, false)
		return nil, err
	}

	return &session{
		cmd:     cmd,
		color:   useColor,
		quiet:   quiet,
		timings: timings,
		timer:   observ.NewTimer(),
		tracing: tr,
		prof:    ps,
	}, nil
}

// close releases tracing and profiling; failed selects the trace ring dump.
func (s *session) close(failed bool) {
	if err := s.prof.Stop(); err != nil {
		fmt.Fprintf(s.cmd.ErrOrStderr(), "profiling: %v\n", err)
	}
	s.tracing.close(s.cmd, failed)
}

// analysis is a loaded profile wired into a fresh engine.
type analysis struct {
	cfg    config.Config
	snap   *profile.Snapshot
	order  phase.Order
	engine *engine.Engine
}

// prepare resolves configuration, loads the profile at path and registers the
// data providers.
func (s *session) prepare(path string) (*analysis, error) {
	configPath, err := s.cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	log := logging.FromContext(s.cmd.Context())

	a := &analysis{}
	if err := s.timer.Track("config", func() error {
		a.cfg, err = config.Resolve(configPath, ".")
		return err
	}); err != nil {
		return nil, err
	}
	if a.cfg.Path != "" {
		log.Info("loaded configuration", "path", a.cfg.Path)
	}

	if err := s.timer.Track("load", func() error {
		a.snap, err = profile.Load(path)
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.timer.Track("register", func() error {
		a.order, err = a.cfg.PhaseOrder()
		if err != nil {
			return err
		}
		reg := engine.NewRegistry()
		if err := dataproviders.Register(reg, a.snap, a.order); err != nil {
			return err
		}
		a.engine = engine.New(reg)
		return nil
	}); err != nil {
		return nil, err
	}
	log.Debug("profile loaded", "path", path, "samples", len(a.snap.Timeline.Samples), "phases", len(a.snap.Phases))
	return a, nil
}

func (s *session) printTimings(a *analysis) {
	if !s.timings {
		return
	}
	var stats engine.Stats
	if a != nil && a.engine != nil {
		stats = a.engine.Stats()
	}
	printTimings(s.cmd.ErrOrStderr(), s.timer, stats)
}
