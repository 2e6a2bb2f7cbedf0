// Package fetcher issues the HTTP GETs of a conversion run: the listing
// page, one per linked chapter and the cover. Requests are sequential, carry a
// per-request timeout and retry transient failures a bounded number of times.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	AcceptAny   = "*/*"
	AcceptHTML  = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	AcceptImage = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = 500 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

type Options struct {
	// Attempts is the total number of tries per URL, including the first.
	Attempts int
	// Backoff is multiplied by the attempt number between tries.
	Backoff time.Duration
	// Timeout bounds a single request. Zero leaves it to the client.
	Timeout time.Duration
	// OnBytes is called with every chunk of body bytes read.
	OnBytes func(n int64)

	DebugLogger interface {
		Debugf(string, ...any)
	}
}

type Fetcher struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	onBytes  func(n int64)
	log      interface{ Debugf(string, ...any) }
}

func New(c *http.Client, opts Options) *Fetcher {
	if c == nil {
		c = http.DefaultClient
	}
	if opts.Attempts < 1 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}

	return &Fetcher{
		client:   c,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		timeout:  opts.Timeout,
		onBytes:  opts.OnBytes,
		log:      opts.DebugLogger,
	}
}

// Get returns the body of target. Failures are *NetworkError or *HTTPError;
// cancellation of ctx is returned unwrapped.
func (f *Fetcher) Get(ctx context.Context, target string) ([]byte, error) {
	return f.fetch(ctx, target, AcceptAny)
}

// Image is Get for image resources such as the cover.
func (f *Fetcher) Image(ctx context.Context, target string) ([]byte, error) {
	return f.fetch(ctx, target, AcceptImage)
}

func (f *Fetcher) Document(ctx context.Context, target string) (*goquery.Document, error) {
	body, err := f.fetch(ctx, target, AcceptHTML)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func (f *Fetcher) fetch(ctx context.Context, target, accept string) ([]byte, error) {
	var err error

	for attempt := 1; attempt <= f.attempts; attempt++ {
		var body []byte
		body, err = f.get(ctx, target, accept)
		if err == nil {
			return body, nil
		}

		if !retryable(err) || attempt == f.attempts {
			break
		}

		f.debugf("GET %s failed (attempt %d/%d): %v", target, attempt, f.attempts, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.backoff * time.Duration(attempt)):
		}
	}

	return nil, err
}

func (f *Fetcher) get(ctx context.Context, target, accept string) ([]byte, error) {
	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{URL: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{URL: target, StatusCode: resp.StatusCode}
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	if _, err := copyWithProgress(&buf, resp.Body, f.onBytes); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{URL: target, Err: err}
	}

	return buf.Bytes(), nil
}

func (f *Fetcher) debugf(format string, args ...any) {
	if f.log != nil {
		f.log.Debugf(format, args...)
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	var netErr *NetworkError
	return errors.As(err, &netErr)
}
