// Package ratelimit wraps golang.org/x/time/rate with an optional limiter:
// a rate of zero (or negative) disables limiting entirely, so call sites can
// construct one unconditionally from config.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter throttles outgoing requests to a configured rate. A nil inner
// limiter means limiting is disabled and every operation passes immediately.
type Limiter struct {
	limiter *rate.Limiter
	rps     float64
}

// New creates a limiter allowing rps requests per second with a burst of 1.
// A zero or negative rps returns a disabled limiter.
func New(rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		rps:     rps,
	}
}

// Enabled reports whether rate limiting is active.
func (l *Limiter) Enabled() bool {
	return l.limiter != nil
}

// RPS returns the configured requests-per-second rate, or 0 when disabled.
func (l *Limiter) RPS() float64 {
	return l.rps
}

// Wait blocks until a request is permitted or the context is canceled.
// Returns immediately when limiting is disabled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now without waiting.
func (l *Limiter) Allow() bool {
	if l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// Reserve returns a reservation for a future request, or nil when limiting
// is disabled (callers treat nil as "no delay").
func (l *Limiter) Reserve() *rate.Reservation {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Reserve()
}

// String describes the limiter configuration for startup logging.
func (l *Limiter) String() string {
	if !l.Enabled() {
		return "rate limiting disabled"
	}
	if l.rps < 1 {
		return fmt.Sprintf("1 request per %.1f seconds", 1/l.rps)
	}
	return fmt.Sprintf("%.2f rps", l.rps)
}
