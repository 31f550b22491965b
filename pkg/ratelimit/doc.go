// Package ratelimit provides request pacing for the loc.gov API.
//
// The loc.gov JSON API allows 80 requests per minute and blocks violators
// for an hour, so every HTTP request the crawler makes, including retry
// attempts, must pass through a single shared limiter.
//
// Usage:
//
//	limiter := ratelimit.NewPerMinute(80) // 750ms between request starts
//
//	if err := limiter.Acquire(ctx); err != nil {
//	    return err // context cancelled
//	}
//	// issue the request
package ratelimit
