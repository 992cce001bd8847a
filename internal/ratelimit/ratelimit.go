// Package ratelimit provides per-vendor request budgets over
// golang.org/x/time/rate. Public aggregator APIs enforce tight quotas; the
// limiter is applied before every vendor round-trip.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with convenience constructors.
type Limiter struct {
	limiter *rate.Limiter
}

// PerMinute creates a limiter allowing requestsPerMinute, with a burst of
// 10% of the budget (minimum 1).
func PerMinute(requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// PerSecond creates a limiter with an explicit burst.
func PerSecond(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}

// Group holds one limiter per vendor id, created on demand.
type Group struct {
	budget   int // requests per minute per vendor
	limiters map[string]*Limiter
	mu       sync.Mutex
}

// NewGroup creates a limiter group with a per-vendor budget.
func NewGroup(requestsPerMinute int) *Group {
	return &Group{
		budget:   requestsPerMinute,
		limiters: make(map[string]*Limiter),
	}
}

// For returns the limiter for a vendor, creating it on first use.
func (g *Group) For(vendor string) *Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[vendor]
	if !ok {
		l = PerMinute(g.budget)
		g.limiters[vendor] = l
	}
	return l
}
