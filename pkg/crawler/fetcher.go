package crawler

import (
	"context"
	"time"

	"locimages/pkg/config"
	"locimages/pkg/loc"
	"locimages/pkg/logger"
	"locimages/pkg/ratelimit"
	"locimages/pkg/retry"
)

// SearchClient fetches one decoded result page. Implemented by *loc.Client.
type SearchClient interface {
	GetSearchPage(ctx context.Context, pageURL string) (*loc.SearchResponse, error)
}

// PageFetcher fetches one page with pacing and retries. Implemented by
// *Fetcher; tests substitute scripted fakes.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*loc.SearchResponse, error)
}

// Fetcher issues rate-limited page requests and retries retryable failures
// with exponential backoff. Every attempt, including retries, passes through
// the shared limiter, so the backoff sleep adds to the steady-state spacing
// rather than replacing it.
type Fetcher struct {
	client  SearchClient
	limiter ratelimit.Limiter
	logger  logger.Logger

	jitter     float64
	maxDelay   time.Duration
	maxElapsed time.Duration

	// injectable for tests
	sleep func(ctx context.Context, delay time.Duration) error
}

// NewFetcher creates a fetcher backed by the given client and limiter
func NewFetcher(client SearchClient, limiter ratelimit.Limiter, retryCfg config.RetryConfig, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		client:     client,
		limiter:    limiter,
		logger:     log,
		jitter:     retryCfg.JitterFactor,
		maxDelay:   retryCfg.MaxDelay,
		maxElapsed: retryCfg.MaxElapsed,
		sleep:      retry.Wait,
	}
}

// FetchPage fetches and decodes one result page. It returns only after a
// successful fetch, a non-retryable failure, an exhausted retry budget, or
// context cancellation. Retry state is fresh per page: the backoff curve
// restarts at the limiter's interval for every logical request.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (*loc.SearchResponse, error) {
	backoff := &retry.ExponentialBackoff{
		BaseDelay:    f.limiter.Interval(),
		MaxDelay:     f.maxDelay,
		Multiplier:   2.0,
		JitterFactor: f.jitter,
	}

	cfg := &retry.Config{
		MaxElapsed: f.maxElapsed,
		Backoff:    backoff,
		RetryIf:    retry.DefaultRetryIf,
		Context:    ctx,
		Logger:     f.logger.WithField("url", pageURL),
		Sleep:      f.sleep,
	}

	return retry.DoWithResult(func() (*loc.SearchResponse, error) {
		if err := f.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		return f.client.GetSearchPage(ctx, pageURL)
	}, cfg)
}
