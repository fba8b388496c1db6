package catalog

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing catalog requests to a fixed requests-per-
// second budget, created once at startup and shared by all operations of a
// single client.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing rps requests per second with a
// burst of one.
func NewRateLimiter(rps float64) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the limiter allows a request or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
