package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
)

// BrowserFetcher uses Rod (headless Chrome) for pages that only render their
// text with JavaScript.
type BrowserFetcher struct {
	browser     *rod.Browser
	timeout     time.Duration
	pageTimeout time.Duration
	userAgent   string
}

// BrowserFetcherConfig holds configuration for the browser fetcher.
type BrowserFetcherConfig struct {
	Timeout     time.Duration
	PageTimeout time.Duration
	UserAgent   string
}

// NewBrowserFetcher launches a headless browser and connects to it.
func NewBrowserFetcher(cfg BrowserFetcherConfig) (*BrowserFetcher, error) {
	u, err := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	pageTimeout := cfg.PageTimeout
	if pageTimeout == 0 {
		pageTimeout = 15 * time.Second
	}

	return &BrowserFetcher{
		browser:     browser,
		timeout:     timeout,
		pageTimeout: pageTimeout,
		userAgent:   cfg.UserAgent,
	}, nil
}

func (f *BrowserFetcher) Name() string { return "browser" }

func (f *BrowserFetcher) Fetch(ctx context.Context, targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: f.Name(),
		FetchedAt:   start,
	}
	fail := func(err error) (*plugin.PageData, error) {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		return page, fmt.Errorf("fetch %s: %w", targetURL, err)
	}

	rodPage, err := f.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fail(err)
	}
	defer rodPage.Close()

	rodPage = rodPage.Timeout(f.timeout)

	if f.userAgent != "" {
		_ = rodPage.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: f.userAgent,
		})
	}

	// The navigation response is the only place the real status is visible
	var status int
	waitResponse := rodPage.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			status = e.Response.Status
			return true
		}
		return false
	})

	if err := rodPage.Navigate(targetURL); err != nil {
		return fail(err)
	}
	waitResponse()

	if err := rodPage.WaitStable(f.pageTimeout); err != nil {
		// Content may still be usable
		if !strings.Contains(err.Error(), "context canceled") {
			page.Error = "page did not fully stabilize: " + err.Error()
		}
	}

	if info, err := rodPage.Info(); err == nil {
		page.FinalURL = info.URL
	}

	html, err := rodPage.HTML()
	if err != nil {
		return fail(err)
	}

	page.StatusCode = status
	page.RawHTML = html
	page.ResponseSize = len(html)
	page.ContentType = "text/html"
	page.FetchDuration = time.Since(start)

	if status != 0 && (status < 200 || status >= 300) {
		return fail(&plugin.StatusError{URL: targetURL, StatusCode: status})
	}
	return page, nil
}

func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}
