package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeTimer drives an IntervalLimiter without real sleeping: sleeps are
// recorded and advance the fake clock instantly
type fakeTimer struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{now: time.Unix(1000, 0)}
}

func (f *fakeTimer) Now() time.Time {
	return f.now
}

func (f *fakeTimer) Sleep(_ context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

func (f *fakeTimer) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestLimiter(interval time.Duration) (*IntervalLimiter, *fakeTimer) {
	ft := newFakeTimer()
	l := NewIntervalLimiter(interval)
	l.now = ft.Now
	l.sleep = ft.Sleep
	return l, ft
}

func TestFirstAcquireIsImmediate(t *testing.T) {
	l, ft := newTestLimiter(750 * time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ft.sleeps) != 0 {
		t.Errorf("expected no sleep on first acquire, got %v", ft.sleeps)
	}
}

func TestAcquireEnforcesMinimumSpacing(t *testing.T) {
	const interval = 750 * time.Millisecond
	const n = 5
	l, ft := newTestLimiter(interval)

	start := ft.Now()
	for i := 0; i < n; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("acquire %d: unexpected error: %v", i, err)
		}
	}

	// Span from first to last permitted start must be at least (n-1)*interval
	span := ft.Now().Sub(start)
	if min := time.Duration(n-1) * interval; span < min {
		t.Errorf("expected span >= %v for %d acquires, got %v", min, n, span)
	}
}

func TestAcquireSleepsOnlyTheRemainder(t *testing.T) {
	const interval = 750 * time.Millisecond
	l, ft := newTestLimiter(interval)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Part of the interval has already passed by the next acquire
	ft.Advance(500 * time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ft.sleeps) != 1 {
		t.Fatalf("expected exactly one sleep, got %v", ft.sleeps)
	}
	if want := 250 * time.Millisecond; ft.sleeps[0] != want {
		t.Errorf("expected sleep of %v, got %v", want, ft.sleeps[0])
	}
}

func TestAcquireSkipsSleepWhenIntervalElapsed(t *testing.T) {
	l, ft := newTestLimiter(750 * time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ft.Advance(2 * time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ft.sleeps) != 0 {
		t.Errorf("expected no sleeps, got %v", ft.sleeps)
	}
}

func TestAcquireCancellation(t *testing.T) {
	l := NewIntervalLimiter(time.Hour)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCancelledAcquireLeavesStateIntact(t *testing.T) {
	const interval = 750 * time.Millisecond
	l, ft := newTestLimiter(interval)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A cancelled wait must not move the last-request timestamp
	l.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	if err := l.Acquire(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	// The next acquire still honors the interval relative to the first
	l.sleep = ft.Sleep
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ft.sleeps) != 1 || ft.sleeps[0] != interval {
		t.Errorf("expected a single sleep of %v, got %v", interval, ft.sleeps)
	}
}

func TestNewPerMinute(t *testing.T) {
	l := NewPerMinute(80)
	if want := 750 * time.Millisecond; l.Interval() != want {
		t.Errorf("expected interval %v for 80 req/min, got %v", want, l.Interval())
	}
}
