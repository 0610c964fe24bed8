package plugin

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork means no session token could be obtained.
	ErrNetwork = errors.New("network error")

	// ErrAuthExhausted means a data call was still rejected after one token renewal.
	ErrAuthExhausted = errors.New("authorization failed after token renewal")

	// ErrTransport means the request never produced a response (connection, timeout).
	ErrTransport = errors.New("transport error")

	// ErrBadResponse means a non-auth failure status or an undecodable body.
	ErrBadResponse = errors.New("bad response")

	// ErrStorage means the aggregate file could not be written or read.
	ErrStorage = errors.New("storage error")
)

// StatusError carries the status of a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsAuthStatus reports whether code signals an authorization failure.
func IsAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
