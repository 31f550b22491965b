// Package crawler orchestrates the paginated crawl of a loc.gov search.
//
// A Crawler turns a collection or search URL into a lazy stream of
// deduplicated image URLs. Requests are serialized and paced by a shared
// rate limiter; transient failures are retried with exponential backoff
// before a page is given up on. Consumers can start printing page-1 URLs
// while page 2 is still being fetched.
package crawler
