package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "locimages/pkg/errors"
	"locimages/pkg/logger"
)

func TestExponentialBackoffValues(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    750 * time.Millisecond,
		MaxDelay:     MaxBackoffDelay,
		Multiplier:   2.0,
		JitterFactor: 0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{1, 750 * time.Millisecond, "first retry at the rate floor"},
		{2, 1500 * time.Millisecond, "second retry doubles"},
		{3, 3 * time.Second, "third retry doubles again"},
		{14, MaxBackoffDelay, "capped at max delay"},
		{20, MaxBackoffDelay, "still capped"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			if delay := backoff.NextDelay(test.attempt); delay != test.expected {
				t.Errorf("attempt %d: expected %v, got %v", test.attempt, test.expected, delay)
			}
		})
	}
}

func TestExponentialBackoffMonotonic(t *testing.T) {
	backoff := NewCrawlBackoff(750*time.Millisecond, 0)

	prev := time.Duration(0)
	for attempt := 1; attempt <= 20; attempt++ {
		delay := backoff.NextDelay(attempt)
		if delay < prev {
			t.Fatalf("delay decreased at attempt %d: %v < %v", attempt, delay, prev)
		}
		prev = delay
	}
}

func TestJitterStaysWithinEnvelope(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    750 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for attempt := 1; attempt <= 10; attempt++ {
		for i := 0; i < 50; i++ {
			delay := backoff.NextDelay(attempt)
			if delay < backoff.BaseDelay {
				t.Fatalf("attempt %d: jitter pushed delay below floor: %v", attempt, delay)
			}
			if delay > backoff.MaxDelay {
				t.Fatalf("attempt %d: jitter pushed delay above cap: %v", attempt, delay)
			}
		}
	}
}

func TestRetrySucceedsAfterRetryableFailures(t *testing.T) {
	base := 750 * time.Millisecond
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return &errs.Error{Type: errs.ErrorTypeServerError, Message: "server error", Code: 500}
		}
		return nil
	}

	var sleeps []time.Duration
	cfg := &Config{
		Backoff: NewCrawlBackoff(base, 0),
		RetryIf: DefaultRetryIf,
		Context: context.Background(),
		Logger:  logger.NewTestLogger(),
		Sleep: func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	}

	if err := Do(op, cfg); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}

	// Two failures mean exactly two backoff sleeps: base then base*2
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 sleeps, got %v", sleeps)
	}
	if sleeps[0] != base || sleeps[1] != 2*base {
		t.Errorf("expected sleeps [%v %v], got %v", base, 2*base, sleeps)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	notFound := &errs.Error{Type: errs.ErrorTypeNotFound, Message: "resource not found", Code: 404}
	op := func() error {
		attempts++
		return notFound
	}

	cfg := &Config{
		Backoff: &ConstantBackoff{Delay: time.Millisecond},
		RetryIf: DefaultRetryIf,
		Context: context.Background(),
		Logger:  logger.NewTestLogger(),
		Sleep: func(_ context.Context, _ time.Duration) error {
			t.Fatal("sleep should not be called for a non-retryable error")
			return nil
		},
	}

	err := Do(op, cfg)
	if !errors.Is(err, notFound) {
		t.Errorf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return &errs.Error{Type: errs.ErrorTypeServerError, Message: "server error", Code: 503}
	}

	cfg := &Config{
		MaxElapsed: time.Nanosecond, // any delay overshoots the budget
		Backoff:    &ConstantBackoff{Delay: time.Second},
		RetryIf:    DefaultRetryIf,
		Context:    context.Background(),
		Logger:     logger.NewTestLogger(),
		Sleep: func(_ context.Context, _ time.Duration) error {
			return nil
		},
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("expected an error once the budget is exhausted")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}

	var apiErr *errs.Error
	if !errors.As(err, &apiErr) {
		t.Errorf("expected the last error to be wrapped, got %v", err)
	}
}

func TestRetryCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func() error {
		attempts++
		cancel()
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset", Code: 0}
	}

	cfg := &Config{
		Backoff: &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf: DefaultRetryIf,
		Context: ctx,
		Logger:  logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"server error", &errs.Error{Type: errs.ErrorTypeServerError}, true},
		{"rate limit", &errs.Error{Type: errs.ErrorTypeRateLimit}, true},
		{"network error", &errs.Error{Type: errs.ErrorTypeNetwork}, true},
		{"malformed body", &errs.Error{Type: errs.ErrorTypeParsing}, true},
		{"not found", &errs.Error{Type: errs.ErrorTypeNotFound}, false},
		{"invalid url", &errs.Error{Type: errs.ErrorTypeInvalidURL}, false},
		{"context cancelled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"untyped error", errors.New("something"), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := DefaultRetryIf(test.err); got != test.expected {
				t.Errorf("DefaultRetryIf(%v) = %v, expected %v", test.err, got, test.expected)
			}
		})
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", &errs.Error{Type: errs.ErrorTypeServerError, Code: 500}
		}
		return "page", nil
	}

	cfg := &Config{
		Backoff: &ConstantBackoff{Delay: time.Millisecond},
		RetryIf: DefaultRetryIf,
		Context: context.Background(),
		Logger:  logger.NewTestLogger(),
		Sleep: func(_ context.Context, _ time.Duration) error {
			return nil
		},
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "page" {
		t.Errorf("expected result %q, got %q", "page", result)
	}
}
