package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"buildlens/internal/engine"
	"buildlens/internal/fact"
	"buildlens/internal/reportfmt"
	"buildlens/internal/trace"
)

var factsFormat string

func init() {
	factsCmd.Flags().StringVar(&factsFormat, "format", "pretty", "output format (pretty|json)")
}

var factsCmd = &cobra.Command{
	Use:   "facts <profile>",
	Short: "Resolve and print every fact derivable from a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runFacts,
}

func runFacts(cmd *cobra.Command, args []string) (err error) {
	format := strings.ToLower(factsFormat)
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", factsFormat)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { s.close(err != nil) }()

	ctx, span := trace.StartSpan(cmd.Context(), trace.ScopeRun, "facts")
	defer span.End("")

	a, err := s.prepare(args[0])
	if err != nil {
		return err
	}
	defer s.printTimings(a)

	var rows []reportfmt.FactRow
	failed := 0
	_ = s.timer.Track("resolve", func() error {
		for _, t := range a.engine.Registry().Types() {
			row := reportfmt.FactRow{Type: string(t)}
			v, ok, err := a.engine.GetOptional(ctx, t)
			switch {
			case err != nil:
				failed++
				row.Status, row.Summary = reportfmt.FactFailed, err.Error()
			case !ok:
				row.Status, row.Summary = reportfmt.FactUnavailable, unavailableReason(ctx, a.engine, t)
			default:
				row.Status, row.Description = reportfmt.FactOK, v.Description()
				if summary, ok := v.Summary(); ok {
					row.Summary = summary
				}
			}
			rows = append(rows, row)
		}
		return nil
	})

	out := cmd.OutOrStdout()
	if format == "json" {
		err = reportfmt.FactsJSON(out, rows, reportfmt.JSONOpts{Indent: true})
	} else {
		err = reportfmt.Facts(out, rows, reportfmt.PrettyOpts{Color: s.color, Width: terminalWidth(out)})
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d facts failed to derive", failed)
	}
	return nil
}

// unavailableReason asks for a fact already known to be unavailable; the
// cached outcome carries the provider's reason.
func unavailableReason(ctx context.Context, e *engine.Engine, t fact.Type) string {
	_, err := e.Get(ctx, t)
	var missing *engine.MissingUpstreamError
	if errors.As(err, &missing) {
		return missing.Reason
	}
	return ""
}
