// Package ratelimiter throttles how fast the accept loop hands new
// connections to the worker pool.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket over accepted connections. A nil
// *RateLimiter, or one built with a zero rate, never throttles.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing perSecond connections on average with
// bursts of up to burst.
//
// Special cases:
//   - perSecond = 0: unlimited
//   - burst = 0: burst equals perSecond (at least 1), since a bucket that
//     holds no tokens would block forever
func New(perSecond, burst uint) *RateLimiter {
	if perSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = perSecond
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), int(burst))}
}

// Enabled reports whether the limiter ever delays a caller.
func (r *RateLimiter) Enabled() bool {
	return r != nil && r.limiter.Limit() != rate.Inf
}

// Allow consumes a token if one is available without waiting.
func (r *RateLimiter) Allow() bool {
	if !r.Enabled() {
		return true
	}
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
//
// Returns ctx.Err() (or the limiter's deadline error) if no token could be
// obtained in time.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if !r.Enabled() {
		return ctx.Err()
	}
	return r.limiter.Wait(ctx)
}

// Tokens returns the tokens currently in the bucket, for logging.
func (r *RateLimiter) Tokens() float64 {
	if !r.Enabled() {
		return 0
	}
	return r.limiter.Tokens()
}
