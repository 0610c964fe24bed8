// Package directory talks to the countries and leaders endpoints of the
// directory service on behalf of a session.Manager.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ramkansal/leadercrawl/internal/session"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
	"github.com/rs/zerolog"
)

// Endpoints holds the absolute URLs of the data endpoints.
type Endpoints struct {
	Countries string
	Leaders   string
}

// Client fetches countries and leader rosters. Every request carries the
// manager's current token; a 401 or 403 triggers one renewal and one retry.
type Client struct {
	http      *resty.Client
	sessions  *session.Manager
	endpoints Endpoints
	log       zerolog.Logger
}

// New creates a directory Client. http should be the same client the
// session.Manager was built with.
func New(http *resty.Client, sessions *session.Manager, endpoints Endpoints, logger zerolog.Logger) *Client {
	return &Client{
		http:      http,
		sessions:  sessions,
		endpoints: endpoints,
		log:       logger.With().Str("component", "directory").Logger(),
	}
}

// ListCountries returns the country identifiers in the order the service lists them.
func (c *Client) ListCountries(ctx context.Context) ([]plugin.Country, error) {
	res, _, err := c.get(ctx, c.endpoints.Countries, nil)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	var countries []plugin.Country
	if err := json.Unmarshal(res.Body(), &countries); err != nil {
		return nil, fmt.Errorf("list countries: %w: %w", plugin.ErrBadResponse, err)
	}
	return countries, nil
}

// FetchLeaders returns the leader roster of one country. renewed reports
// whether the shared token had to be replaced along the way.
func (c *Client) FetchLeaders(ctx context.Context, country plugin.Country) (leaders []plugin.Leader, renewed bool, err error) {
	res, renewed, err := c.get(ctx, c.endpoints.Leaders, map[string]string{"country": country})
	if err != nil {
		return nil, renewed, fmt.Errorf("fetch leaders for %q: %w", country, err)
	}

	leaders, err = plugin.DecodeLeaders(res.Body())
	if err != nil {
		return nil, renewed, fmt.Errorf("fetch leaders for %q: %w: %w", country, plugin.ErrBadResponse, err)
	}
	return leaders, renewed, nil
}

// FetchCountry runs FetchLeaders and folds the error into a typed outcome.
func (c *Client) FetchCountry(ctx context.Context, country plugin.Country) plugin.CountryResult {
	start := time.Now()
	leaders, renewed, err := c.FetchLeaders(ctx, country)
	return plugin.CountryResult{
		Country:  country,
		Outcome:  Classify(err),
		Leaders:  leaders,
		Err:      err,
		Renewed:  renewed,
		Duration: time.Since(start),
	}
}

// Classify maps an error from this package to a country outcome.
func Classify(err error) plugin.Outcome {
	switch {
	case err == nil:
		return plugin.OutcomeOK
	case errors.Is(err, plugin.ErrAuthExhausted):
		return plugin.OutcomeAuthExhausted
	case errors.Is(err, plugin.ErrTransport):
		return plugin.OutcomeTransportFailed
	default:
		return plugin.OutcomeBadResponse
	}
}

// get issues a GET with the current token, renewing it once on 401/403.
// The returned response is always a success.
func (c *Client) get(ctx context.Context, url string, query map[string]string) (*resty.Response, bool, error) {
	tok := c.sessions.Current()
	res, err := c.do(ctx, tok, url, query)
	if err != nil {
		return nil, false, err
	}

	renewed := false
	if plugin.IsAuthStatus(res.StatusCode()) {
		c.log.Debug().
			Str("url", url).
			Int("status", res.StatusCode()).
			Uint64("generation", tok.Generation()).
			Msg("token rejected, renewing")

		fresh, err := c.sessions.Renew(ctx, tok)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", plugin.ErrAuthExhausted, err)
		}
		renewed = true

		res, err = c.do(ctx, fresh, url, query)
		if err != nil {
			return nil, renewed, err
		}
		if plugin.IsAuthStatus(res.StatusCode()) {
			return nil, renewed, fmt.Errorf("%w: %w", plugin.ErrAuthExhausted,
				&plugin.StatusError{URL: url, StatusCode: res.StatusCode()})
		}
	}

	if !res.IsSuccess() {
		return nil, renewed, fmt.Errorf("%w: %w", plugin.ErrBadResponse,
			&plugin.StatusError{URL: url, StatusCode: res.StatusCode()})
	}
	return res, renewed, nil
}

func (c *Client) do(ctx context.Context, tok session.Token, url string, query map[string]string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetCookies(tok.Cookies())
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	res, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", plugin.ErrTransport, err)
	}
	return res, nil
}
