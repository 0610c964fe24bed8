// Package enrich attaches a biographical first paragraph to leader records
// that link to a reference page.
package enrich

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ramkansal/leadercrawl/internal/extractor"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
	"github.com/rs/zerolog"
)

// Config controls the per-URL paragraph cache. A CacheSize of 0 disables it.
type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Enricher fetches reference pages and extracts their first paragraph.
type Enricher struct {
	fetcher plugin.Fetcher
	cache   *expirable.LRU[string, string]
	log     zerolog.Logger
}

// New creates an Enricher that fetches pages with f.
func New(f plugin.Fetcher, cfg Config, logger zerolog.Logger) *Enricher {
	e := &Enricher{
		fetcher: f,
		log:     logger.With().Str("component", "enrich").Logger(),
	}
	if cfg.CacheSize > 0 {
		e.cache = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return e
}

// Enrich sets FirstParagraph on every leader that has a WikipediaURL, in place.
// Leaders without one are left untouched. A failed fetch or an empty extraction
// yields an empty paragraph for that leader only.
func (e *Enricher) Enrich(ctx context.Context, leaders []plugin.Leader) plugin.EnrichStats {
	var stats plugin.EnrichStats
	for i := range leaders {
		l := &leaders[i]
		if l.WikipediaURL == nil {
			stats.Skipped++
			continue
		}

		text, cached, err := e.paragraph(ctx, *l.WikipediaURL)
		l.SetFirstParagraph(text)

		switch {
		case err != nil:
			stats.Failed++
			e.log.Debug().Err(err).Str("leader", l.Name()).Str("url", *l.WikipediaURL).Msg("reference page fetch failed")
		case text == "":
			stats.Failed++
			e.log.Debug().Str("leader", l.Name()).Str("url", *l.WikipediaURL).Msg("no paragraph long enough")
		default:
			stats.Enriched++
			if cached {
				stats.Cached++
			}
		}
	}
	return stats
}

func (e *Enricher) paragraph(ctx context.Context, url string) (string, bool, error) {
	if e.cache != nil {
		if text, ok := e.cache.Get(url); ok {
			return text, true, nil
		}
	}

	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", false, err
	}

	text := extractor.Paragraph(page.RawHTML)
	if text != "" && e.cache != nil {
		e.cache.Add(url, text)
	}
	return text, false, nil
}
