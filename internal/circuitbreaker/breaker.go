// Package circuitbreaker wraps sony/gobreaker with the configuration shape
// the vendor adapters use. A tripped breaker turns a flapping vendor into an
// immediate quote failure instead of a stalled request.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/metaswap/swapr/internal/apperror"
)

// Config holds breaker tuning for one vendor.
type Config struct {
	Name                string
	MaxHalfOpenRequests uint32
	CountingWindow      time.Duration
	OpenTimeout         time.Duration
	FailureThreshold    uint32  // consecutive failures before tripping
	FailureRatio        float64 // or: ratio over the counting window
	MinRequests         uint32  // requests before the ratio applies
}

// DefaultConfig returns breaker settings suited to quote traffic.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxHalfOpenRequests: 1,
		CountingWindow:      60 * time.Second,
		OpenTimeout:         30 * time.Second,
		FailureThreshold:    5,
		FailureRatio:        0.6,
		MinRequests:         10,
	}
}

// CircuitBreaker guards calls returning T.
type CircuitBreaker[T any] struct {
	cb   *gobreaker.CircuitBreaker[T]
	name string
}

// New creates a breaker from the given config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxHalfOpenRequests,
		Interval:    cfg.CountingWindow,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.FailureThreshold {
				return true
			}
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
	}
	return &CircuitBreaker[T]{
		cb:   gobreaker.NewCircuitBreaker[T](settings),
		name: cfg.Name,
	}
}

// Execute runs fn under the breaker. An open breaker yields a typed
// CIRCUIT_OPEN error so the orchestrator discards the vendor like any other
// quote failure.
func (b *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		var zero T
		return zero, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithVendor(b.name),
			apperror.WithCause(err),
		)
	}
	return result, err
}

// State returns the breaker state name for health reporting.
func (b *CircuitBreaker[T]) State() string {
	return b.cb.State().String()
}
