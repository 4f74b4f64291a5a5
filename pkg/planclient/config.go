package planclient

import (
	"errors"
	"time"
)

// Config holds client settings loaded from the environment.
type Config struct {
	BaseURL       string        `env:"ENTITLEMENT_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout       time.Duration `env:"ENTITLEMENT_HTTP_TIMEOUT" envDefault:"10s"`
	RetryAttempts int           `env:"ENTITLEMENT_RETRY_ATTEMPTS" envDefault:"2"`
	RetryMinWait  time.Duration `env:"ENTITLEMENT_RETRY_MIN_WAIT" envDefault:"200ms"`
	RetryMaxWait  time.Duration `env:"ENTITLEMENT_RETRY_MAX_WAIT" envDefault:"2s"`
	UserAgent     string        `env:"ENTITLEMENT_USER_AGENT" envDefault:"planguard"`
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("planclient: base URL is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("planclient: timeout must be positive"))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, errors.New("planclient: retry attempts must not be negative"))
	}
	if c.RetryMaxWait < c.RetryMinWait {
		errs = append(errs, errors.New("planclient: retry max wait is below min wait"))
	}
	return errors.Join(errs...)
}

// NewFromConfig creates a client from environment configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	base := []Option{
		WithHTTPClient(nil, cfg.Timeout),
		WithRetryPolicy(RetryPolicy{MaxRetries: cfg.RetryAttempts, MinWait: cfg.RetryMinWait, MaxWait: cfg.RetryMaxWait}),
		WithUserAgent(cfg.UserAgent),
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}
