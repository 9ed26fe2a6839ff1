// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/arxiv-horizon/internal/httputil"
)

// TransportError reports a request the API did not answer successfully:
// a network failure (StatusCode 0), a non-200 HTTP status, or an error
// entry embedded in an otherwise well-formed feed.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("arXiv API request: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("arXiv API returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("arXiv API returned HTTP %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transient reports whether repeating the request later may succeed.
func (e *TransportError) Transient() bool {
	return e.StatusCode == 0 || httputil.Throttled(e.StatusCode) || e.StatusCode >= http.StatusInternalServerError
}

// MalformedResponseError reports a response that is not an arXiv Atom feed.
// It is never transient.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("parsing arXiv response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
