package planstatus

import (
	"errors"
	"time"
)

// Config holds provider settings loaded from the environment.
type Config struct {
	StaleAfter   time.Duration `env:"PLAN_STATUS_STALE_AFTER" envDefault:"30s"`
	FetchTimeout time.Duration `env:"PLAN_STATUS_FETCH_TIMEOUT" envDefault:"5s"`
	RetryBackoff time.Duration `env:"PLAN_STATUS_RETRY_BACKOFF" envDefault:"5s"`
	CacheSize    int           `env:"PLAN_STATUS_CACHE_SIZE" envDefault:"32"`
}

// Validate checks that durations and cache size are positive.
func (c Config) Validate() error {
	var errs []error
	if c.StaleAfter <= 0 {
		errs = append(errs, errors.New("planstatus: stale-after must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("planstatus: fetch timeout must be positive"))
	}
	if c.RetryBackoff < 0 {
		errs = append(errs, errors.New("planstatus: retry backoff must not be negative"))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, errors.New("planstatus: cache size must be positive"))
	}
	return errors.Join(errs...)
}

// Options converts the config into provider options.
func (c Config) Options() []Option {
	return []Option{
		WithStaleAfter(c.StaleAfter),
		WithFetchTimeout(c.FetchTimeout),
		WithRetryBackoff(c.RetryBackoff),
		WithCacheSize(c.CacheSize),
	}
}
