package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	staveerr "github.com/tessro/stave/internal/errors"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// Retry configuration for transient errors
	defaultRetries = 3
	baseRetryWait  = 500 * time.Millisecond
)

// Fetcher reads locators: local paths, file:// URLs and http(s) URLs.
type Fetcher struct {
	httpClient *http.Client
	retries    int
	retryWait  time.Duration
	log        *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithRetries sets how many times transient failures are retried.
func WithRetries(n int, wait time.Duration) Option {
	return func(f *Fetcher) {
		f.retries = n
		f.retryWait = wait
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retries:    defaultRetries,
		retryWait:  baseRetryWait,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsRemote returns true if locator is an http(s) URL.
func IsRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// Join appends name to a base locator, as a URL path or a file path.
func Join(base, name string) string {
	if IsRemote(base) {
		joined, err := url.JoinPath(base, name)
		if err != nil {
			return strings.TrimSuffix(base, "/") + "/" + name
		}
		return joined
	}
	return filepath.Join(strings.TrimPrefix(base, "file://"), name)
}

// Fetch returns the bytes behind locator.
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if locator == "" {
		return nil, staveerr.ErrNoContent
	}
	if IsRemote(locator) {
		return f.get(ctx, locator)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(locator, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, staveerr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	f.log.Debug("fetch", "url", rawURL)

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := f.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			f.log.Debug("fetch retry", "attempt", attempt, "max", f.retries, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue // Retry on network error
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = &StatusError{URL: rawURL, Status: resp.StatusCode}
			continue
		}

		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			return nil, &StatusError{URL: rawURL, Status: resp.StatusCode}
		}

		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", f.retries, lastErr)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Unwrap maps 404 to ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return staveerr.ErrNotFound
	}
	return nil
}
