// Package fetch issues GET requests with a bounded number of attempts and a
// linearly growing pause between them.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 2 * time.Second
	DefaultTimeout     = 15 * time.Second

	userAgent = "study-desk/1.0"
)

// ErrStatus matches any *StatusError.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client fetches response bodies. It holds no per-request state and is safe
// to reuse.
type Client struct {
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
	limiter     *rate.Limiter
}

type Option func(*Client)

// WithMaxAttempts sets how many times a request is tried. Values below one
// are treated as one.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.maxAttempts = n
	}
}

// WithBackoff sets the base delay. The pause after attempt i is base*i.
func WithBackoff(base time.Duration) Option {
	return func(c *Client) { c.backoff = base }
}

// WithRateLimit caps outgoing requests, retries included, at rps per second.
// Zero or negative leaves requests unthrottled.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithHTTPClient replaces the underlying client. Its Timeout is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client whose requests time out after timeout.
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the body of url. Network errors and non-2xx responses are
// retried; once every attempt has failed the last error is returned as is.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	attempt := 0

	b := retry.WithMaxRetries(uint64(c.maxAttempts-1), linearBackoff(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		attempt++
		text, err := c.get(ctx, url)
		if err != nil {
			slog.Warn("fetch attempt failed", "url", url, "attempt", attempt, "max_attempts", c.maxAttempts, "error", err)
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		body = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return string(data), nil
}

// linearBackoff yields base, 2*base, 3*base, ... A fresh one is built for
// every Fetch call.
func linearBackoff(base time.Duration) retry.Backoff {
	var n time.Duration
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return base * n, false
	})
}
