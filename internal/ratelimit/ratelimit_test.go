package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_SameSource_EnforcesMinDelay(t *testing.T) {
	limiter := NewSourceRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "remoteok"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "remoteok"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentSources_NoCrossBlocking(t *testing.T) {
	limiter := NewSourceRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "remoteok"); err != nil {
		t.Fatalf("remoteok wait: %v", err)
	}

	// Immediately call for freelancer — should NOT block.
	start := time.Now()
	if err := limiter.Wait(ctx, "freelancer"); err != nil {
		t.Fatalf("freelancer wait: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("expected freelancer wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewSourceRateLimiter(5 * time.Second) // long delay
	ctx := context.Background()

	// First call to seed the last-call time.
	if err := limiter.Wait(ctx, "remoteok"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	// Cancel the context before the wait completes.
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := limiter.Wait(ctx, "remoteok")
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

// --- Mock for RateLimitedFetcher test ---

type recordingFetcher struct {
	called bool
}

func (f *recordingFetcher) Source() string { return "remoteok" }

func (f *recordingFetcher) Fetch(_ context.Context, _ string) ([]map[string]any, error) {
	f.called = true
	return nil, nil
}

func TestRateLimitedFetcher_DelegatesAfterWait(t *testing.T) {
	limiter := NewSourceRateLimiter(10 * time.Millisecond)
	inner := &recordingFetcher{}
	f := NewRateLimitedFetcher(inner, limiter)

	if _, err := f.Fetch(context.Background(), "go"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !inner.called {
		t.Error("expected wrapped fetcher to be called")
	}
	if f.Source() != "remoteok" {
		t.Errorf("Source() = %q", f.Source())
	}
}
