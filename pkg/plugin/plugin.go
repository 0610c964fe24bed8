// Package plugin defines the public data model and interfaces for leadercrawl.
// External tools can import this package to plug in their own page fetchers
// or result stores without forking the project.
package plugin

import (
	"context"
	"time"
)

// ---------- Core Data Types ----------

// Country is a short identifier as returned by the directory service (e.g. "be").
type Country = string

// Aggregate maps every successfully crawled country to its leader records.
type Aggregate map[Country][]Leader

// PageData represents a fetched reference page.
type PageData struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url"`
	StatusCode    int           `json:"status_code"`
	RawHTML       string        `json:"-"`
	ContentType   string        `json:"content_type"`
	FetchedAt     time.Time     `json:"fetched_at"`
	FetchDuration time.Duration `json:"fetch_duration"`
	FetcherUsed   string        `json:"fetcher_used"`
	Error         string        `json:"error,omitempty"`
	ResponseSize  int           `json:"response_size"`
}

// Outcome classifies how the leader fetch for one country ended.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeAuthExhausted   Outcome = "auth_exhausted"
	OutcomeTransportFailed Outcome = "transport_failed"
	OutcomeBadResponse     Outcome = "bad_response"
)

// Outcomes lists every outcome in reporting order.
var Outcomes = []Outcome{OutcomeOK, OutcomeAuthExhausted, OutcomeTransportFailed, OutcomeBadResponse}

// CountryResult is the typed result of one per-country pipeline invocation.
type CountryResult struct {
	Country  Country
	Outcome  Outcome
	Leaders  []Leader
	Err      error
	Renewed  bool
	Enriched EnrichStats
	Duration time.Duration
}

// EnrichStats counts what the enrichment step did for a batch of leaders.
type EnrichStats struct {
	Enriched int `json:"enriched"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	Cached   int `json:"cached"`
}

// Add accumulates o into s.
func (s *EnrichStats) Add(o EnrichStats) {
	s.Enriched += o.Enriched
	s.Failed += o.Failed
	s.Skipped += o.Skipped
	s.Cached += o.Cached
}

// RunSummary is the final report of a crawl.
type RunSummary struct {
	RootURL    string          `json:"root_url"`
	OutputPath string          `json:"output_path"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Duration   time.Duration   `json:"duration"` // fetch-and-enrich phase only
	Countries  []Country       `json:"countries"`
	Outcomes   map[Outcome]int `json:"outcomes"`
	Leaders    int             `json:"leaders"`
	Renewals   int             `json:"renewals"`
	Enrichment EnrichStats     `json:"enrichment"`
	Result     Aggregate       `json:"-"` // the aggregate as reloaded from disk
}

// ---------- Event Types ----------

// CrawlEvent represents a real-time event emitted by the crawler.
type CrawlEvent struct {
	Type    EventType
	Country Country
	Result  *CountryResult
	Summary *RunSummary
	Error   error
	Message string
}

// EventType identifies the kind of event.
type EventType int

const (
	EventCrawlStarted EventType = iota
	EventCountriesListed
	EventCountryStarted
	EventCountryDone
	EventCountryFailed
	EventSaved
	EventCrawlFinished
)

// ---------- Plugin Interfaces ----------

// Fetcher defines how reference pages are retrieved.
type Fetcher interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Fetch retrieves the page at the given URL.
	Fetch(ctx context.Context, url string) (*PageData, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Store defines how the aggregate is persisted.
type Store interface {
	// Save writes the aggregate, replacing any previous contents.
	Save(agg Aggregate) error

	// Load reads back what Save wrote.
	Load() (Aggregate, error)
}
