package suggest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"buildlens/internal/engine"
	"buildlens/internal/logging"
	"buildlens/internal/trace"
)

// RunOptions controls Run.
type RunOptions struct {
	// Jobs bounds how many providers run at once; 0 means unbounded.
	Jobs int
}

// Report aggregates the outputs of one run, in provider order.
type Report struct {
	Outputs []Output
}

// HasFailures reports whether any provider failed.
func (r *Report) HasFailures() bool {
	for _, o := range r.Outputs {
		if o.Failed() {
			return true
		}
	}
	return false
}

// Failures returns the failed outputs.
func (r *Report) Failures() []Output {
	var out []Output
	for _, o := range r.Outputs {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// SuggestionCount returns the number of suggestions across all outputs.
func (r *Report) SuggestionCount() int {
	n := 0
	for _, o := range r.Outputs {
		n += len(o.Suggestions)
	}
	return n
}

// Run invokes every provider against r in parallel. A provider failing or
// panicking only affects its own output.
func Run(ctx context.Context, r engine.Resolver, providers []Provider, opts RunOptions) *Report {
	outputs := make([]Output, len(providers))

	var g errgroup.Group
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, p := range providers {
		g.Go(func() error {
			outputs[i] = runOne(ctx, r, p)
			return nil
		})
	}
	_ = g.Wait()

	return &Report{Outputs: outputs}
}

func runOne(ctx context.Context, r engine.Resolver, p Provider) (out Output) {
	name := p.Name()
	ctx, span := trace.StartSpan(ctx, trace.ScopeSuggestion, name)
	defer func() {
		if rec := recover(); rec != nil {
			out = Failed(name, fmt.Errorf("suggestion provider panicked: %v", rec))
		}
		if out.Provider == "" {
			out.Provider = name
		}
		if out.Failed() {
			out.Suggestions = nil
			logging.FromContext(ctx).Warn("suggestion provider failed", "provider", name, "error", out.Failure.Message)
			span.Fail(out.Failure.Message)
			return
		}
		span.WithExtra("suggestions", fmt.Sprint(len(out.Suggestions))).End("ok")
	}()
	return p.Suggest(ctx, r)
}
