package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ramkansal/leadercrawl/pkg/plugin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bio = strings.Repeat("A long enough biography sentence. ", 4)

// fakeFetcher serves canned markup per URL and counts fetches.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: map[string]int{}}
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*plugin.PageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	markup, ok := f.pages[url]
	if !ok {
		return nil, &plugin.StatusError{URL: url, StatusCode: 404}
	}
	return &plugin.PageData{URL: url, StatusCode: 200, RawHTML: markup}, nil
}

func (f *fakeFetcher) Close() error { return nil }

func leader(id, url string) plugin.Leader {
	l := plugin.Leader{Fields: map[string]any{"id": id}}
	if url != "" {
		l.WikipediaURL = &url
	}
	return l
}

func TestEnrich(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://wiki/a":     "<p>" + bio + "[1]</p>",
		"https://wiki/short": "<p>too short</p>",
	})
	e := New(f, Config{}, zerolog.Nop())

	leaders := []plugin.Leader{
		leader("a", "https://wiki/a"),
		leader("none", ""),
		leader("missing", "https://wiki/missing"),
		leader("short", "https://wiki/short"),
	}
	stats := e.Enrich(context.Background(), leaders)

	require.NotNil(t, leaders[0].FirstParagraph)
	assert.Equal(t, strings.TrimSpace(bio), *leaders[0].FirstParagraph)

	assert.Nil(t, leaders[1].FirstParagraph, "leaders without a URL get no paragraph field")

	require.NotNil(t, leaders[2].FirstParagraph)
	assert.Equal(t, "", *leaders[2].FirstParagraph)
	require.NotNil(t, leaders[3].FirstParagraph)
	assert.Equal(t, "", *leaders[3].FirstParagraph)

	assert.Equal(t, plugin.EnrichStats{Enriched: 1, Failed: 2, Skipped: 1}, stats)
}

func TestEnrich_CachesSuccessfulParagraphs(t *testing.T) {
	f := newFakeFetcher(map[string]string{"https://wiki/a": "<p>" + bio + "</p>"})
	e := New(f, Config{CacheSize: 8, CacheTTL: time.Hour}, zerolog.Nop())

	leaders := []plugin.Leader{
		leader("1", "https://wiki/a"),
		leader("2", "https://wiki/a"),
		leader("3", "https://wiki/missing"),
		leader("4", "https://wiki/missing"),
	}
	stats := e.Enrich(context.Background(), leaders)

	assert.Equal(t, 1, f.calls["https://wiki/a"])
	assert.Equal(t, 2, f.calls["https://wiki/missing"], "failures are not cached")
	assert.Equal(t, *leaders[0].FirstParagraph, *leaders[1].FirstParagraph)
	assert.Equal(t, plugin.EnrichStats{Enriched: 2, Failed: 2, Cached: 1}, stats)
}

func TestEnrich_NoCache(t *testing.T) {
	f := newFakeFetcher(map[string]string{"https://wiki/a": "<p>" + bio + "</p>"})
	e := New(f, Config{CacheSize: 0}, zerolog.Nop())

	e.Enrich(context.Background(), []plugin.Leader{
		leader("1", "https://wiki/a"),
		leader("2", "https://wiki/a"),
	})
	assert.Equal(t, 2, f.calls["https://wiki/a"])
}

type failingFetcher struct{ err error }

func (f failingFetcher) Name() string { return "failing" }
func (f failingFetcher) Fetch(context.Context, string) (*plugin.PageData, error) {
	return nil, f.err
}
func (f failingFetcher) Close() error { return nil }

func TestEnrich_FetchErrorsStayPerLeader(t *testing.T) {
	e := New(failingFetcher{err: errors.New("connection refused")}, Config{}, zerolog.Nop())

	leaders := []plugin.Leader{leader("1", "https://wiki/a"), leader("2", "")}
	stats := e.Enrich(context.Background(), leaders)

	require.NotNil(t, leaders[0].FirstParagraph)
	assert.Equal(t, "", *leaders[0].FirstParagraph)
	assert.Nil(t, leaders[1].FirstParagraph)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
}
