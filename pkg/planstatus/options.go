package planstatus

import (
	"log/slog"
	"time"
)

const (
	DefaultStaleAfter   = 30 * time.Second
	DefaultFetchTimeout = 5 * time.Second
	DefaultRetryBackoff = 5 * time.Second
	DefaultCacheSize    = 32
)

// Option configures a Provider.
type Option func(*Provider)

// WithStaleAfter sets how long a snapshot counts as fresh. Non-positive values are ignored.
func WithStaleAfter(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.staleAfter = d
		}
	}
}

// WithFetchTimeout bounds every fetch. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// WithRetryBackoff sets how long a failed key waits before non-blocking reads
// start another fetch. Zero retries on every read.
func WithRetryBackoff(d time.Duration) Option {
	return func(p *Provider) {
		if d >= 0 {
			p.retryBackoff = d
		}
	}
}

// WithCacheSize sets how many (user, business) contexts are kept.
func WithCacheSize(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.cacheSize = n
		}
	}
}

// WithLogger sets the provider logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}
