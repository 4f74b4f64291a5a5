package planstatus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/invoiceaz/planguard/pkg/planstatus"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := planstatus.Config{
		StaleAfter:   30 * time.Second,
		FetchTimeout: 5 * time.Second,
		RetryBackoff: 5 * time.Second,
		CacheSize:    32,
	}
	assert.NoError(t, valid.Validate())
	assert.Len(t, valid.Options(), 4)

	tests := []struct {
		name   string
		mutate func(*planstatus.Config)
	}{
		{"zero stale after", func(c *planstatus.Config) { c.StaleAfter = 0 }},
		{"negative timeout", func(c *planstatus.Config) { c.FetchTimeout = -time.Second }},
		{"negative backoff", func(c *planstatus.Config) { c.RetryBackoff = -time.Second }},
		{"empty cache", func(c *planstatus.Config) { c.CacheSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
