// Package retry provides retry logic with exponential backoff for page
// fetches against the loc.gov API.
//
// The backoff floor is the rate limiter's request interval, so the first
// retry is no more aggressive than the steady-state crawl, and the ceiling
// is MaxBackoffDelay, which outlasts the API's one hour temporary ban.
//
// Usage:
//
//	cfg := &retry.Config{
//	    Backoff: retry.NewCrawlBackoff(750*time.Millisecond, 0.1),
//	    RetryIf: retry.DefaultRetryIf,
//	    Context: ctx,
//	}
//
//	page, err := retry.DoWithResult(func() (*loc.SearchResponse, error) {
//	    return client.GetSearchPage(ctx, url)
//	}, cfg)
package retry
