package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CrawlConfig holds all configuration for a crawl run.
type CrawlConfig struct {
	// Directory service
	RootURL       string `mapstructure:"root_url"`
	TokenPath     string `mapstructure:"token_path"`
	CountriesPath string `mapstructure:"countries_path"`
	LeadersPath   string `mapstructure:"leaders_path"`

	// Request options
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxResponseSize int           `mapstructure:"max_response_size"`
	Parallelism     int           `mapstructure:"parallelism"`

	// Reference pages
	FetcherMode    FetcherMode   `mapstructure:"fetcher"`
	BrowserTimeout time.Duration `mapstructure:"browser_timeout"`
	PageTimeout    time.Duration `mapstructure:"page_timeout"`
	CacheSize      int           `mapstructure:"cache_size"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`

	// Output
	OutputPath  string `mapstructure:"output"`
	MetricsFile string `mapstructure:"metrics_file"`
	Silent      bool   `mapstructure:"silent"`
	Verbose     bool   `mapstructure:"verbose"`
	NoColor     bool   `mapstructure:"no_color"`
}

// FetcherMode controls which fetcher retrieves reference pages.
type FetcherMode string

const (
	FetcherHTTP    FetcherMode = "http"
	FetcherBrowser FetcherMode = "browser"
	FetcherAuto    FetcherMode = "auto"
)

// DefaultRootURL is the public directory service.
const DefaultRootURL = "https://country-leaders.onrender.com"

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		RootURL:         DefaultRootURL,
		TokenPath:       "/cookie",
		CountriesPath:   "/countries",
		LeadersPath:     "/leaders",
		UserAgent:       "leadercrawl/1.0 (+https://github.com/ramkansal/leadercrawl)",
		Timeout:         10 * time.Second,
		MaxResponseSize: 4194304, // 4MB
		Parallelism:     1,
		FetcherMode:     FetcherHTTP,
		BrowserTimeout:  30 * time.Second,
		PageTimeout:     15 * time.Second,
		CacheSize:       1024,
		CacheTTL:        time.Hour,
		OutputPath:      "leaders.json",
	}
}

// Validate reports the first setting that would make a run impossible.
func (c *CrawlConfig) Validate() error {
	if strings.TrimSpace(c.RootURL) == "" {
		return errors.New("root_url is required")
	}
	u, err := url.Parse(c.RootURL)
	if err != nil {
		return fmt.Errorf("invalid root_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("root_url must be http or https, got %q", c.RootURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be greater than zero")
	}
	if c.Parallelism < 1 {
		return errors.New("parallelism must be at least 1")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.New("output is required")
	}
	switch c.FetcherMode {
	case FetcherHTTP, FetcherBrowser, FetcherAuto:
	default:
		return fmt.Errorf("unknown fetcher %q (want http, browser or auto)", c.FetcherMode)
	}
	return nil
}

// TokenURL, CountriesURL and LeadersURL join the root URL with each endpoint path.
func (c *CrawlConfig) TokenURL() string     { return joinURL(c.RootURL, c.TokenPath) }
func (c *CrawlConfig) CountriesURL() string { return joinURL(c.RootURL, c.CountriesPath) }
func (c *CrawlConfig) LeadersURL() string   { return joinURL(c.RootURL, c.LeadersPath) }

func joinURL(root, path string) string {
	return strings.TrimRight(root, "/") + "/" + strings.TrimLeft(path, "/")
}
