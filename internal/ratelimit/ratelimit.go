package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pgauin01/hustlebot/internal/model"
)

// SourceRateLimiter enforces a minimum delay between requests to the same job source.
type SourceRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: source tag
	minDelay time.Duration
}

// NewSourceRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same source.
func NewSourceRateLimiter(minDelay time.Duration) *SourceRateLimiter {
	return &SourceRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the given source.
// Returns an error if the context is cancelled while waiting.
func (r *SourceRateLimiter) Wait(ctx context.Context, source string) error {
	r.mu.Lock()
	last, ok := r.lastCall[source]
	now := time.Now()

	if !ok {
		// First request for this source — no wait needed.
		r.lastCall[source] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		// Enough time has passed — proceed immediately.
		r.lastCall[source] = now
		r.mu.Unlock()
		return nil
	}

	// Need to wait for the remainder.
	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", source, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	r.mu.Lock()
	r.lastCall[source] = time.Now()
	r.mu.Unlock()

	return nil
}

// RateLimitedFetcher is a decorator that enforces source-level rate limiting
// before delegating to the wrapped SourceFetcher.
type RateLimitedFetcher struct {
	inner   model.SourceFetcher
	limiter *SourceRateLimiter
}

// NewRateLimitedFetcher wraps a SourceFetcher with rate limiting. Fetchers
// targeting the same source should share the same limiter instance.
func NewRateLimitedFetcher(inner model.SourceFetcher, limiter *SourceRateLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
	}
}

// Source reports the wrapped fetcher's source tag.
func (f *RateLimitedFetcher) Source() string { return f.inner.Source() }

// Fetch waits for the rate limiter to allow a request, then delegates to
// the wrapped fetcher.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, query string) ([]map[string]any, error) {
	if err := f.limiter.Wait(ctx, f.inner.Source()); err != nil {
		return nil, err
	}
	return f.inner.Fetch(ctx, query)
}
