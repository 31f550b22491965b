// Package loc talks to the Library of Congress loc.gov JSON API.
//
// It covers the three concerns the crawler needs from the API surface:
//
//   - Query normalization: turning a browser URL for a collection or search
//     into the page-1 API query (JSON format, page size, result attributes).
//   - The HTTP client: one GET per page, with response status classified
//     into retryable and non-retryable typed errors.
//   - Extraction: probing the loosely structured result records for image
//     descriptors and their resolution variants.
//
// The API documents a crawl limit of 80 requests per minute with a one hour
// block for violators; pacing is the caller's job (see pkg/ratelimit).
package loc
