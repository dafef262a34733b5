package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"buildlens/internal/trace"
	"buildlens/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "buildlens",
	Short: "Build profile analyzer",
	Long: `buildlens inspects a captured build profile, derives facts such as action
bottlenecks and phase timings, and turns them into suggestions for a faster build.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Current().Version

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to buildlens.toml (default: searched upward from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("log-level", "warn", "diagnostic log level (debug|info|warn|error)")

	pf.String("trace", "", "write trace events to this file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|run|debug)")
	pf.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", trace.DefaultRingSize, "events kept in the trace ring buffer")
	pf.Duration("trace-heartbeat", 0, "emit trace heartbeats at this interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile of the analyzer to this file")
	pf.String("mem-profile", "", "write a heap profile of the analyzer to this file")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

// main runs the root command. Any command error exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
