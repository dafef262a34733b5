package main

import (
	"fmt"
	"io"

	"buildlens/internal/engine"
	"buildlens/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer, stats engine.Stats) {
	if out == nil || timer == nil {
		return
	}
	if _, err := io.WriteString(out, timer.Summary()); err != nil {
		return
	}
	fmt.Fprintf(out, "  %d derivations, %d cache hits\n", stats.Derivations, stats.CacheHits)
}
