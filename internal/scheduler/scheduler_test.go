package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ImmediateFirstRun(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(func(_ context.Context) error {
		runs.Add(1)
		return nil
	}, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The first run fires before the first tick.
	deadline := time.After(time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected an immediate run before the first tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestRun_TicksOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(func(_ context.Context) error {
		runs.Add(1)
		return nil
	}, 20*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 1 immediate + ~5 ticks; allow slack for timer scheduling.
	if got := runs.Load(); got < 3 {
		t.Errorf("expected at least 3 runs, got %d", got)
	}
}

func TestRun_FailedRunDoesNotStopLoop(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(func(_ context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := runs.Load(); got < 2 {
		t.Errorf("expected the loop to continue after failures, got %d runs", got)
	}
}

func TestRun_ReturnsNilOnCancel(t *testing.T) {
	s := NewScheduler(func(_ context.Context) error { return nil }, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); err != nil {
		t.Errorf("Run after cancel = %v, want nil", err)
	}
}
