package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// InsertLimiter paces queue inserts to a steady number per second.
// Burst is one, so inserts are spread evenly rather than released in clumps.
type InsertLimiter struct {
	limiter *rate.Limiter
}

// New creates an InsertLimiter allowing perSecond inserts per second.
// A zero or negative rate means unlimited.
func New(perSecond float64) *InsertLimiter {
	if perSecond <= 0 {
		return &InsertLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &InsertLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until the next insert is allowed.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (l *InsertLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Unlimited reports whether the limiter never blocks.
func (l *InsertLimiter) Unlimited() bool {
	return l.limiter.Limit() == rate.Inf
}
