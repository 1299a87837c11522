package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces file analysis during scans.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a token bucket allowing r events per second with burst b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}
