package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Acquire blocks until the rate limit allows another request to start,
	// or the context is cancelled
	Acquire(ctx context.Context) error
	// Interval returns the minimum spacing between request starts
	Interval() time.Duration
}

// IntervalLimiter enforces a minimum interval between consecutive request
// starts. A single instance is shared across the whole run, including retry
// attempts, so the process never exceeds the API's crawl ceiling.
type IntervalLimiter struct {
	interval time.Duration
	last     time.Time // zero until the first Acquire
	mu       sync.Mutex

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewIntervalLimiter creates a limiter with a fixed minimum interval
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NewPerMinute creates a limiter that spaces requests evenly across a minute.
// 80 requests per minute yields a 750ms interval.
func NewPerMinute(requests int) *IntervalLimiter {
	if requests <= 0 {
		requests = 1
	}
	return NewIntervalLimiter(time.Minute / time.Duration(requests))
}

// Acquire blocks until at least the configured interval has elapsed since the
// previous Acquire returned. The first call returns immediately.
//
// Elapsed time is measured with time.Time's monotonic clock reading, so wall
// clock adjustments do not affect the spacing. A cancelled wait leaves the
// limiter state untouched; a later Acquire still honors the interval relative
// to the last permitted request.
func (l *IntervalLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	var wait time.Duration
	if !l.last.IsZero() {
		wait = l.interval - l.now().Sub(l.last)
	}
	l.mu.Unlock()

	if wait > 0 {
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.last = l.now()
	l.mu.Unlock()
	return nil
}

// Interval returns the minimum spacing between request starts
func (l *IntervalLimiter) Interval() time.Duration {
	return l.interval
}

// sleepContext sleeps for d or until the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
