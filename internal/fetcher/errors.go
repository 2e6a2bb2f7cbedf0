package fetcher

import (
	"fmt"
	"net/http"
)

// NetworkError reports a request that never produced an HTTP response:
// DNS failure, refused connection, timeout.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a response with a non-2xx status.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s fetching %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Temporary reports whether a retry may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
