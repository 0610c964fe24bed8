// Package session owns the cookie token the directory service hands out and
// renews it when a data call is rejected.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Token is an immutable snapshot of the session cookies. Each successful
// acquisition produces a new generation; a Token is never modified in place.
type Token struct {
	cookies    []*http.Cookie
	generation uint64
}

// Cookies returns a copy of the cookies making up the token.
func (t Token) Cookies() []*http.Cookie {
	out := make([]*http.Cookie, len(t.cookies))
	for i, c := range t.cookies {
		cp := *c
		out[i] = &cp
	}
	return out
}

// Generation identifies which acquisition produced the token.
func (t Token) Generation() uint64 { return t.generation }

// IsZero reports whether the token was never acquired.
func (t Token) IsZero() bool { return t.generation == 0 }

// Manager acquires and renews the shared token. It is safe for concurrent use.
type Manager struct {
	client   *resty.Client
	tokenURL string
	log      zerolog.Logger

	mu       sync.RWMutex
	current  Token
	next     uint64
	renewals int

	group singleflight.Group
}

// NewManager creates a Manager that requests tokens from tokenURL using client.
// The same client should be shared with every data call of the run.
func NewManager(client *resty.Client, tokenURL string, logger zerolog.Logger) *Manager {
	return &Manager{
		client:   client,
		tokenURL: tokenURL,
		log:      logger.With().Str("component", "session").Logger(),
	}
}

// Acquire fetches a fresh token and makes it the shared one. It performs no
// retry; any failure is reported as plugin.ErrNetwork and the previous token
// stays in place.
func (m *Manager) Acquire(ctx context.Context) (Token, error) {
	res, err := m.client.R().
		SetContext(ctx).
		Get(m.tokenURL)
	if err != nil {
		return Token{}, fmt.Errorf("%w: acquire token: %w", plugin.ErrNetwork, err)
	}
	if !res.IsSuccess() {
		return Token{}, fmt.Errorf("%w: acquire token: %w", plugin.ErrNetwork,
			&plugin.StatusError{URL: m.tokenURL, StatusCode: res.StatusCode()})
	}

	cookies := res.Cookies()
	if len(cookies) == 0 {
		return Token{}, fmt.Errorf("%w: acquire token: %s set no cookies", plugin.ErrNetwork, m.tokenURL)
	}

	m.mu.Lock()
	m.next++
	tok := Token{cookies: cookies, generation: m.next}
	m.current = tok
	m.mu.Unlock()

	m.log.Debug().Uint64("generation", tok.generation).Int("cookies", len(cookies)).Msg("token acquired")
	return tok, nil
}

// Current returns the shared token.
func (m *Manager) Current() Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Renew replaces stale with a fresh token. If another caller already renewed
// past stale, that newer token is returned without a request. Concurrent
// callers holding the same stale token share a single acquisition.
func (m *Manager) Renew(ctx context.Context, stale Token) (Token, error) {
	if cur := m.Current(); cur.generation > stale.generation {
		return cur, nil
	}

	key := fmt.Sprintf("renew-%d", stale.generation)
	v, err, _ := m.group.Do(key, func() (any, error) {
		if cur := m.Current(); cur.generation > stale.generation {
			return cur, nil
		}
		tok, err := m.Acquire(ctx)
		if err != nil {
			return Token{}, err
		}
		m.mu.Lock()
		m.renewals++
		m.mu.Unlock()
		m.log.Info().Uint64("generation", tok.generation).Msg("token renewed")
		return tok, nil
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// Renewals returns how many renewals actually hit the token endpoint.
func (m *Manager) Renewals() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.renewals
}
