package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// MaxBackoffDelay caps the exponential curve. It is a power-of-two multiple
// of the steady-state request interval and just over the one hour block the
// API imposes on rate-limit violators, so a banned crawl eventually outwaits
// the ban instead of prolonging it.
const MaxBackoffDelay = 4096 * time.Second

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay before the given retry attempt (1-based)
	NextDelay(attempt int) time.Duration
	// Reset resets the backoff strategy to initial state
	Reset()
}

// ExponentialBackoff implements exponential backoff with bounded jitter.
//
// The delay for attempt k is BaseDelay * Multiplier^(k-1), capped at
// MaxDelay. Jitter never pushes the result below BaseDelay or above
// MaxDelay, so the backoff floor always matches the steady-state crawl rate.
type ExponentialBackoff struct {
	// BaseDelay is the initial delay duration
	BaseDelay time.Duration
	// MaxDelay is the maximum delay duration
	MaxDelay time.Duration
	// Multiplier is the factor by which delay increases
	Multiplier float64
	// JitterFactor adds randomness to avoid thundering-herd effects (0.0 to 1.0)
	JitterFactor float64
}

// NewCrawlBackoff returns the backoff used for page fetches: the floor of
// the curve is the rate limiter's interval and the ceiling is MaxBackoffDelay.
func NewCrawlBackoff(base time.Duration, jitter float64) *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    base,
		MaxDelay:     MaxBackoffDelay,
		Multiplier:   2.0,
		JitterFactor: jitter,
	}
}

// NextDelay calculates the delay before the given attempt
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt-1))

	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	if eb.JitterFactor > 0 {
		jitter := delay * eb.JitterFactor
		// Random value between -jitter and +jitter
		delay += (rand.Float64() * 2 * jitter) - jitter
	}

	// Jitter must not escape the [BaseDelay, MaxDelay] envelope
	if delay < float64(eb.BaseDelay) {
		delay = float64(eb.BaseDelay)
	}
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	return time.Duration(delay)
}

// Reset resets the backoff to initial state
func (eb *ExponentialBackoff) Reset() {}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Reset resets the backoff (no-op for constant backoff)
func (cb *ConstantBackoff) Reset() {}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
