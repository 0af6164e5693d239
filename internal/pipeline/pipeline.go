// Package pipeline implements the job-hunt orchestration engine: a fixed
// sequence of stages operating over a shared, incrementally-accumulated
// state, with per-stage failure isolation so that one source or one AI call
// failing never aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Stage is one step of the pipeline with a declared read/write contract over
// the shared state. Run returns a partial update; it must not mutate the
// State directly.
type Stage interface {
	Name() string
	Reads() []string
	Writes() []string
	Run(ctx context.Context, s *State) (Update, error)
}

// Runner owns the shared state and drives stages in order. A stage error is
// contained at the stage boundary: it is logged and the run continues with
// the state as-is. Only configuration errors propagate to the caller.
type Runner struct {
	stages []Stage
	logger *slog.Logger
}

// NewRunner creates a runner that executes the given stages in order.
func NewRunner(logger *slog.Logger, stages ...Stage) *Runner {
	return &Runner{stages: stages, logger: logger}
}

// Run executes one pipeline run and returns the final best-effort state.
// It fails only on invalid inputs, before any stage executes.
func (r *Runner) Run(ctx context.Context, in Inputs) (*State, error) {
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}

	state := newState(in)
	logger := r.logger.With("run_id", state.RunID)
	logger.Info("starting run",
		"query", in.SearchQuery,
		"sources", in.SelectedSources,
		"must_have", in.MustHaveKeywords,
	)

	for _, st := range r.stages {
		if ctx.Err() != nil {
			logger.Warn("run cancelled", "stage", st.Name())
			break
		}

		upd, err := st.Run(ctx, state)
		if err != nil {
			logger.Error("stage failed, continuing", "stage", st.Name(), "error", err)
			continue
		}

		for _, f := range upd.Fields() {
			if !slices.Contains(st.Writes(), f) {
				logger.Warn("stage wrote undeclared field", "stage", st.Name(), "field", f)
			}
		}
		state.Apply(upd)

		logger.Info("stage complete",
			"stage", st.Name(),
			"raw", len(state.RawCollected),
			"normalized", len(state.Normalized),
			"qualified", len(state.Qualified),
		)
	}

	logger.Info("run finished",
		"raw", len(state.RawCollected),
		"normalized", len(state.Normalized),
		"qualified", len(state.Qualified),
		"scored", state.Scored(),
	)
	return state, nil
}
