package plans

import (
	"context"
	"fmt"
)

// CounterFunc returns the current usage of one usage field for a tenant.
type CounterFunc func(ctx context.Context, t Tenant) (int64, error)

// CounterRegistry maps a usage field (e.g. "clients", "invoices_this_month")
// to its CounterFunc. Register all counters at startup; it is not safe for
// concurrent writes.
type CounterRegistry map[string]CounterFunc

// NewRegistry returns an empty counter registry.
func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the counter for field. Panics if fn is nil.
func (r CounterRegistry) Register(field string, fn CounterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("plans: CounterFunc for field %q cannot be nil", field))
	}
	r[field] = fn
}
