package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"buildlens/internal/trace"
)

type tracing struct {
	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
}

// setupTracing reads the trace flags and attaches a tracer to the command context.
func setupTracing(cmd *cobra.Command) (*tracing, error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace without a level streams run-level events
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelRun
		if !root.PersistentFlags().Changed("trace-mode") {
			modeStr = "stream"
		}
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return &tracing{tracer: trace.Nop}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return &tracing{
		tracer:    tracer,
		heartbeat: trace.StartHeartbeat(tracer, heartbeatInterval),
	}, nil
}

// close stops the heartbeat and flushes the tracer. After a failed run the
// ring buffer, if any, is dumped to stderr.
func (t *tracing) close(cmd *cobra.Command, failed bool) {
	t.heartbeat.Stop()
	if failed {
		errOut := cmd.ErrOrStderr()
		if ok, err := trace.DumpRing(t.tracer, errOut, trace.FormatText); ok && err != nil {
			fmt.Fprintf(errOut, "trace: dump error: %v\n", err)
		}
	}
	if err := t.tracer.Flush(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
	}
	if err := t.tracer.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
	}
}
