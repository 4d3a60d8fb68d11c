package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxBytes caps a single response body.
	DefaultMaxBytes int64 = 64 << 20
)

// HTTPLoader fetches sources over http(s). Each fetch is bounded by its own
// timeout so a stalled server cannot hang a load forever.
type HTTPLoader struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

type HTTPLoaderOpt func(*HTTPLoader)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) HTTPLoaderOpt {
	return func(l *HTTPLoader) {
		l.timeout = d
	}
}

// WithMaxBytes caps the size of a response body. Zero or less removes the cap.
func WithMaxBytes(n int64) HTTPLoaderOpt {
	return func(l *HTTPLoader) {
		l.maxBytes = n
	}
}

// WithClient replaces the http client used for fetching.
func WithClient(c *http.Client) HTTPLoaderOpt {
	return func(l *HTTPLoader) {
		l.client = c
	}
}

func NewHTTPLoader(opts ...HTTPLoaderOpt) *HTTPLoader {
	l := &HTTPLoader{
		client:   http.DefaultClient,
		timeout:  DefaultFetchTimeout,
		maxBytes: DefaultMaxBytes,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *HTTPLoader) Fetch(ctx context.Context, source string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	// Ignoring close error - body is fully read or abandoned
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if l.maxBytes <= 0 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &FetchError{Source: source, Err: fmt.Errorf("reading body: %w", err)}
		}
		return data, nil
	}

	if resp.ContentLength > l.maxBytes {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("body of %d bytes exceeds the %d byte limit", resp.ContentLength, l.maxBytes)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(data)) > l.maxBytes {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("body exceeds the %d byte limit", l.maxBytes)}
	}

	return data, nil
}
