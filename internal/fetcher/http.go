package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
)

// HTTPFetcher uses Colly to fetch reference pages over plain HTTP.
type HTTPFetcher struct {
	collector *colly.Collector
}

// HTTPFetcherConfig holds configuration for the HTTP fetcher.
type HTTPFetcherConfig struct {
	UserAgent       string
	Timeout         time.Duration
	MaxResponseSize int
}

// NewHTTPFetcher creates a new Colly-based HTTP fetcher.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	if cfg.MaxResponseSize > 0 {
		c.MaxBodySize = cfg.MaxResponseSize
	}

	return &HTTPFetcher{collector: c}
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch retrieves targetURL. Any non-2xx status is returned as an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: f.Name(),
		FetchedAt:   start,
	}

	if err := ctx.Err(); err != nil {
		page.Error = err.Error()
		return page, err
	}

	// Clone the collector for this individual fetch so callbacks don't pile up
	c := f.collector.Clone()
	c.Context = ctx

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.RawHTML = string(r.Body)
		page.ResponseSize = len(r.Body)
		page.FinalURL = r.Request.URL.String()
		page.ContentType = r.Headers.Get("Content-Type")
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			page.StatusCode = r.StatusCode
			if r.Request != nil {
				page.FinalURL = r.Request.URL.String()
			}
		}
	})

	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	page.FetchDuration = time.Since(start)

	if fetchErr == nil && (page.StatusCode < 200 || page.StatusCode >= 300) {
		fetchErr = &plugin.StatusError{URL: targetURL, StatusCode: page.StatusCode}
	}
	if fetchErr != nil {
		page.Error = fetchErr.Error()
		return page, fmt.Errorf("fetch %s: %w", targetURL, fetchErr)
	}
	return page, nil
}

func (f *HTTPFetcher) Close() error {
	return nil
}

