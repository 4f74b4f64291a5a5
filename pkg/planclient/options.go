package planclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// RetryPolicy bounds retries of idempotent requests on 429 and 5xx responses.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		MinWait:    200 * time.Millisecond,
		MaxWait:    2 * time.Second,
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying client. A nil client gets a default one
// with the given timeout.
func WithHTTPClient(hc *http.Client, timeout time.Duration) Option {
	return func(c *Client) {
		if hc == nil {
			hc = &http.Client{Timeout: timeout}
		}
		c.http = hc
	}
}

// WithRetryPolicy replaces the retry attempts and backoff bounds.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p.MaxRetries >= 0 {
			c.retry = p
		}
	}
}

// WithBreaker replaces the circuit breaker, e.g. to share one across clients.
func WithBreaker(cb *gobreaker.CircuitBreaker[*http.Response]) Option {
	return func(c *Client) {
		if cb != nil {
			c.breaker = cb
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger for requests and retries. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSleepFunc overrides the wait between retries. Tests use it to avoid real delays.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}
