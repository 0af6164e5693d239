package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// RunFunc executes one pipeline run.
type RunFunc func(ctx context.Context) error

// Scheduler owns the loop mode: ticks on an interval and triggers a run each time.
type Scheduler struct {
	run      RunFunc
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that triggers run at the given interval.
func NewScheduler(run RunFunc, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		run:      run,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It executes one immediate run, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
// Run failures are logged, never fatal; the next tick gets a fresh attempt.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.run(ctx); err != nil {
		s.logger.Error("run failed", "error", err)
	}
}
