package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"buildlens/internal/reportfmt"
	"buildlens/internal/suggest"
	"buildlens/internal/suggestionproviders"
	"buildlens/internal/trace"
)

var (
	analyzeFormat string
	analyzeJobs   int
	analyzeOnly   []string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "pretty", "output format (pretty|json)")
	analyzeCmd.Flags().IntVarP(&analyzeJobs, "jobs", "j", 0, "suggestion providers run in parallel (default: [analysis].jobs, then GOMAXPROCS)")
	analyzeCmd.Flags().StringSliceVar(&analyzeOnly, "only", nil, "run only these suggestion providers")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <profile>",
	Short: "Suggest build speed-ups from a captured profile",
	Long: `Analyze loads a build profile snapshot (.json, .msgpack or .mp), runs every
enabled suggestion provider and prints their suggestions. The exit status is 1
when any provider failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	format := strings.ToLower(analyzeFormat)
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", analyzeFormat)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { s.close(err != nil) }()

	ctx, span := trace.StartSpan(cmd.Context(), trace.ScopeRun, "analyze")
	defer func() {
		if err != nil {
			span.End("failed")
		} else {
			span.End("ok")
		}
	}()

	a, err := s.prepare(args[0])
	if err != nil {
		return err
	}
	defer s.printTimings(a)

	providers, err := suggestionproviders.Select(
		suggestionproviders.All(a.cfg.ProviderOptions()), analyzeOnly, a.cfg.Suggestions.Disabled)
	if err != nil {
		return err
	}

	jobs := a.cfg.Analysis.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs = analyzeJobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var report *suggest.Report
	_ = s.timer.Track("suggest", func() error {
		report = suggest.Run(ctx, a.engine, providers, suggest.RunOptions{Jobs: jobs})
		return nil
	})

	out := cmd.OutOrStdout()
	if err := s.timer.Track("render", func() error {
		if format == "json" {
			return reportfmt.JSON(out, report, reportfmt.JSONOpts{Indent: true})
		}
		title := "buildlens: " + args[0]
		return reportfmt.Pretty(out, title, report, reportfmt.PrettyOpts{
			Color: s.color,
			Width: terminalWidth(out),
			Quiet: s.quiet,
		})
	}); err != nil {
		return err
	}

	if n := len(report.Failures()); n > 0 {
		return fmt.Errorf("%d of %d suggestion providers failed", n, len(report.Outputs))
	}
	return nil
}
