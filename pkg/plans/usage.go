package plans

import (
	"context"
	"sync"
	"time"

	"github.com/invoiceaz/planguard/pkg/entitlement"
)

// monthlyFields reset at the start of every calendar month (UTC).
var monthlyFields = map[string]bool{
	entitlement.FieldInvoicesThisMonth: true,
	entitlement.FieldExpensesThisMonth: true,
}

// userScopedFields are counted across all businesses of the account.
var userScopedFields = map[string]bool{
	entitlement.FieldClients:    true,
	entitlement.FieldBusinesses: true,
}

type usageKey struct {
	userID     string
	businessID string
	field      string
	period     string
}

// MemoryUsage counts created resources in memory. It backs the development
// server and tests.
type MemoryUsage struct {
	mu     sync.Mutex
	counts map[usageKey]int64
	now    func() time.Time
}

// NewMemoryUsage returns an empty usage store. A nil clock uses time.Now.
func NewMemoryUsage(now func() time.Time) *MemoryUsage {
	if now == nil {
		now = time.Now
	}
	return &MemoryUsage{counts: make(map[usageKey]int64), now: now}
}

func (m *MemoryUsage) key(t Tenant, field string) usageKey {
	k := usageKey{userID: t.UserID, businessID: t.BusinessID, field: field}
	if userScopedFields[field] {
		k.businessID = ""
	}
	if monthlyFields[field] {
		k.period = m.now().UTC().Format("2006-01")
	}
	return k
}

// Count returns the usage of field for t in the current period.
func (m *MemoryUsage) Count(t Tenant, field string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[m.key(t, field)]
}

// Add changes the usage of field by delta and returns the new value.
func (m *MemoryUsage) Add(t Tenant, field string, delta int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(t, field)
	m.counts[k] = max(m.counts[k]+delta, 0)
	return m.counts[k]
}

// Counters returns a registry with a counter for every usage field of the
// known resources.
func (m *MemoryUsage) Counters() CounterRegistry {
	reg := NewRegistry()
	for _, res := range entitlement.Resources() {
		field, _ := res.UsageField()
		reg.Register(field, func(_ context.Context, t Tenant) (int64, error) {
			return m.Count(t, field), nil
		})
	}
	return reg
}
