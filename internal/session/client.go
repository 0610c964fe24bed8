package session

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientConfig holds configuration for the shared directory HTTP client.
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// NewClient creates the resty client shared by the Manager and every data call
// of a run, so they all reuse one connection pool. Cookies are attached per
// request from the current Token; the client keeps no jar of its own.
func NewClient(cfg ClientConfig) *resty.Client {
	client := resty.New()
	client.SetCookieJar(nil)
	client.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return client
}
