package crawler

import (
	"context"
	"fmt"

	"locimages/pkg/config"
	"locimages/pkg/loc"
	"locimages/pkg/logger"
	"locimages/pkg/ratelimit"
)

// Crawler walks a paginated loc.gov search, page by page, and produces the
// deduplicated stream of image URLs found along the way. Fetching is
// strictly serialized: at most one HTTP request is in flight, because the
// rate ceiling is global and simplest to honor without cross-request
// coordination.
type Crawler struct {
	fetcher  PageFetcher
	logger   logger.Logger
	pageSize int
}

// New creates a Crawler wired from configuration
func New(cfg *config.Config, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}

	client := loc.NewClient(cfg.API.Timeout, log)
	if cfg.API.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.API.UserAgent)
	}

	limiter := ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute)

	return &Crawler{
		fetcher:  NewFetcher(client, limiter, cfg.Retry, log),
		logger:   log,
		pageSize: cfg.API.PageSize,
	}
}

// Crawl starts a crawl at the given collection or search URL and returns the
// lazy stream of image URLs.
//
// The first page is fetched before Crawl returns: an invalid input URL or a
// terminal failure on page 1 is fatal and yields an error with no stream.
// Later pages are fetched as the consumer drains the stream; a terminal
// failure there ends the stream early with partial results, surfaced through
// Stream.Err. Each Crawl call is a fresh run starting from page 1.
func (c *Crawler) Crawl(ctx context.Context, rawURL string) (*Stream, error) {
	startURL, err := loc.NormalizeURL(rawURL, c.pageSize)
	if err != nil {
		return nil, err
	}

	c.logger.InfoWithFields("starting crawl", map[string]interface{}{
		"url": startURL,
	})

	first, err := c.fetcher.FetchPage(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("crawl failed on first page: %w", err)
	}

	stream := newStream()
	go c.produce(ctx, first, stream)
	return stream, nil
}

// produce drives the pagination loop: extract, dedup, emit, advance.
func (c *Crawler) produce(ctx context.Context, page *loc.SearchResponse, stream *Stream) {
	defer stream.close()

	seen := make(map[string]struct{})
	pages := 0
	emitted := 0

	for {
		pages++
		for _, img := range loc.ExtractImages(page) {
			ref := img.Ref()
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}

			if !stream.send(ctx, img) {
				c.logger.Debug("crawl abandoned by consumer")
				stream.fail(ctx.Err())
				return
			}
			emitted++
		}

		if !page.Pagination.HasNext() {
			c.logger.InfoWithFields("crawl complete", map[string]interface{}{
				"pages":  pages,
				"images": emitted,
			})
			return
		}

		c.logger.DebugWithFields("advancing to next page", map[string]interface{}{
			"current": page.Pagination.Current,
			"total":   page.Pagination.Total,
		})

		next, err := c.fetcher.FetchPage(ctx, page.Pagination.Next)
		if err != nil {
			// Partial results are still useful: end the stream early and
			// let the caller report the gap instead of failing the run
			c.logger.WarnWithFields("crawl stopped early, keeping partial results", map[string]interface{}{
				"pages":  pages,
				"images": emitted,
				"error":  err.Error(),
			})
			stream.fail(err)
			return
		}
		page = next
	}
}
