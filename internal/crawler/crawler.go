package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ramkansal/leadercrawl/internal/directory"
	"github.com/ramkansal/leadercrawl/internal/enrich"
	"github.com/ramkansal/leadercrawl/internal/fetcher"
	"github.com/ramkansal/leadercrawl/internal/metrics"
	"github.com/ramkansal/leadercrawl/internal/output"
	"github.com/ramkansal/leadercrawl/internal/session"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Crawler is the core engine: it acquires a session, fans out over countries,
// enriches their leaders and persists the aggregate.
type Crawler struct {
	config *CrawlConfig
	log    zerolog.Logger
	events chan plugin.CrawlEvent

	http      *resty.Client
	sessions  *session.Manager
	directory *directory.Client
	fetch     plugin.Fetcher
	enricher  *enrich.Enricher
	store     plugin.Store
	metrics   *metrics.Recorder
}

// Option customises a Crawler before Init.
type Option func(*Crawler)

// WithLogger sets the logger every component derives from.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Crawler) { c.log = l }
}

// WithFetcher replaces the reference-page fetcher chosen from FetcherMode.
func WithFetcher(f plugin.Fetcher) Option {
	return func(c *Crawler) { c.fetch = f }
}

// WithStore replaces the JSON file store.
func WithStore(s plugin.Store) Option {
	return func(c *Crawler) { c.store = s }
}

// WithMetrics sets the recorder run outcomes are reported to.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Crawler) { c.metrics = m }
}

// New creates a new Crawler with the given configuration.
func New(config *CrawlConfig, opts ...Option) *Crawler {
	c := &Crawler{
		config: config,
		log:    zerolog.Nop(),
		events: make(chan plugin.CrawlEvent, 1000),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the event channel. It is closed when Run returns.
func (c *Crawler) Events() <-chan plugin.CrawlEvent {
	return c.events
}

// Init builds every component not injected through an Option.
func (c *Crawler) Init() error {
	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.http = session.NewClient(session.ClientConfig{
		Timeout:   c.config.Timeout,
		UserAgent: c.config.UserAgent,
	})
	c.sessions = session.NewManager(c.http, c.config.TokenURL(), c.log)
	c.directory = directory.New(c.http, c.sessions, directory.Endpoints{
		Countries: c.config.CountriesURL(),
		Leaders:   c.config.LeadersURL(),
	}, c.log)

	if c.fetch == nil {
		c.fetch = c.buildFetcher()
	}
	c.enricher = enrich.New(c.fetch, enrich.Config{
		CacheSize: c.config.CacheSize,
		CacheTTL:  c.config.CacheTTL,
	}, c.log)

	if c.store == nil {
		c.store = output.NewJSONStore(c.config.OutputPath)
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	return nil
}

// buildFetcher picks the reference-page fetcher. A browser that cannot be
// launched degrades to plain HTTP.
func (c *Crawler) buildFetcher() plugin.Fetcher {
	httpFetch := fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
		UserAgent:       c.config.UserAgent,
		Timeout:         c.config.Timeout,
		MaxResponseSize: c.config.MaxResponseSize,
	})
	if c.config.FetcherMode == FetcherHTTP {
		return httpFetch
	}

	browFetch, err := fetcher.NewBrowserFetcher(fetcher.BrowserFetcherConfig{
		Timeout:     c.config.BrowserTimeout,
		PageTimeout: c.config.PageTimeout,
		UserAgent:   c.config.UserAgent,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("browser fetcher unavailable, falling back to HTTP")
		return httpFetch
	}

	if c.config.FetcherMode == FetcherBrowser {
		return browFetch
	}
	return &fetcher.Fallback{Primary: httpFetch, Secondary: browFetch}
}

// Run performs the whole crawl and blocks until the aggregate has been saved
// and reloaded. Failed countries are left out of the aggregate; only token
// acquisition, country listing and persistence failures abort the run.
func (c *Crawler) Run(ctx context.Context) (*plugin.RunSummary, error) {
	defer close(c.events)

	summary := &plugin.RunSummary{
		RootURL:    c.config.RootURL,
		OutputPath: c.config.OutputPath,
		StartedAt:  time.Now(),
		Outcomes:   make(map[plugin.Outcome]int),
	}

	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventCrawlStarted,
		Message: fmt.Sprintf("Starting crawl of %s", c.config.RootURL),
	})

	if _, err := c.sessions.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}

	countries, err := c.directory.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Info().Int("countries", len(countries)).Msg("countries listed")
	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventCountriesListed,
		Message: fmt.Sprintf("%d countries", len(countries)),
	})

	results := c.crawlCountries(ctx, countries)
	summary.Duration = time.Since(summary.StartedAt)

	agg := make(plugin.Aggregate, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		summary.Outcomes[res.Outcome]++
		c.metrics.ObserveCountry(*res)
		if res.Outcome != plugin.OutcomeOK {
			continue
		}
		agg[res.Country] = res.Leaders
		summary.Countries = append(summary.Countries, res.Country)
		summary.Leaders += len(res.Leaders)
		summary.Enrichment.Add(res.Enriched)
	}
	summary.Renewals = c.sessions.Renewals()

	if err := c.store.Save(agg); err != nil {
		return nil, fmt.Errorf("save aggregate: %w", err)
	}
	reloaded, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("reload aggregate: %w", err)
	}
	summary.Result = reloaded
	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventSaved,
		Message: fmt.Sprintf("Saved %d countries to %s", len(agg), c.config.OutputPath),
	})

	summary.FinishedAt = time.Now()
	c.metrics.ObserveRun(summary)
	if c.config.MetricsFile != "" {
		if err := c.metrics.WriteFile(c.config.MetricsFile); err != nil {
			c.log.Warn().Err(err).Str("path", c.config.MetricsFile).Msg("failed to write metrics")
		}
	}

	c.log.Info().
		Dur("duration", summary.Duration).
		Int("countries", len(summary.Countries)).
		Int("leaders", summary.Leaders).
		Int("renewals", summary.Renewals).
		Interface("outcomes", summary.Outcomes).
		Msg("crawl finished")
	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventCrawlFinished,
		Summary: summary,
		Message: fmt.Sprintf("Crawl complete. %d countries, %d leaders.", len(summary.Countries), summary.Leaders),
	})
	return summary, nil
}

// crawlCountries runs the per-country pipeline with at most Parallelism
// countries in flight. Results keep the listing order; a nil entry means the
// country was never started because ctx was cancelled.
func (c *Crawler) crawlCountries(ctx context.Context, countries []plugin.Country) []*plugin.CountryResult {
	results := make([]*plugin.CountryResult, len(countries))

	var g errgroup.Group
	g.SetLimit(c.config.Parallelism)
	for i, country := range countries {
		if ctx.Err() != nil {
			c.log.Warn().Str("country", country).Msg("run cancelled, not starting remaining countries")
			break
		}
		g.Go(func() error {
			res := c.processCountry(ctx, country)
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// processCountry fetches one country's leaders and enriches them.
func (c *Crawler) processCountry(ctx context.Context, country plugin.Country) plugin.CountryResult {
	start := time.Now()
	c.emit(plugin.CrawlEvent{Type: plugin.EventCountryStarted, Country: country})

	res := c.directory.FetchCountry(ctx, country)
	if res.Outcome == plugin.OutcomeOK {
		res.Enriched = c.enricher.Enrich(ctx, res.Leaders)
	}
	res.Duration = time.Since(start)

	if res.Outcome != plugin.OutcomeOK {
		evt := c.log.Warn()
		if errors.Is(res.Err, context.Canceled) {
			evt = c.log.Debug()
		}
		evt.Err(res.Err).
			Str("country", country).
			Str("outcome", string(res.Outcome)).
			Bool("renewed", res.Renewed).
			Msg("country skipped")
		c.emit(plugin.CrawlEvent{
			Type:    plugin.EventCountryFailed,
			Country: country,
			Result:  &res,
			Error:   res.Err,
			Message: fmt.Sprintf("Skipping %s: %v", country, res.Err),
		})
		return res
	}

	c.log.Info().
		Str("country", country).
		Int("leaders", len(res.Leaders)).
		Int("enriched", res.Enriched.Enriched).
		Bool("renewed", res.Renewed).
		Dur("duration", res.Duration).
		Msg("country done")
	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventCountryDone,
		Country: country,
		Result:  &res,
	})
	return res
}

// emit sends an event to the event channel (non-blocking).
func (c *Crawler) emit(event plugin.CrawlEvent) {
	select {
	case c.events <- event:
	default:
		// Drop event if channel is full, the consumer is too slow
	}
}

// Close releases all resources.
func (c *Crawler) Close() error {
	if c.fetch != nil {
		return c.fetch.Close()
	}
	return nil
}
