package plans

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/invoiceaz/planguard/pkg/entitlement"
)

// Plan is one subscription tier of the catalog.
//
// Limits maps a quantity field (e.g. "clients", "invoices_per_month") to its
// cap; a nil value means unlimited and a missing key means no rule at all.
// Features maps a feature field (e.g. "csv_export") to its state.
type Plan struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Limits      map[string]*int64 `yaml:"limits" json:"limits"`
	Features    map[string]bool   `yaml:"features" json:"features"`
}

// Limit returns the cap for field and whether the plan has a rule for it.
func (p Plan) Limit(field string) (entitlement.Limit, bool) {
	v, ok := p.Limits[field]
	if !ok {
		return entitlement.Limit{}, false
	}
	if v == nil {
		return entitlement.Unlimited, true
	}
	return entitlement.Cap(*v), true
}

func (p Plan) clone() Plan {
	out := p
	out.Limits = make(map[string]*int64, len(p.Limits))
	for field, v := range p.Limits {
		if v != nil {
			n := *v
			v = &n
		}
		out.Limits[field] = v
	}
	out.Features = maps.Clone(p.Features)
	return out
}

func (p Plan) validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("plan id is empty"))
	}
	for _, field := range slices.Sorted(maps.Keys(p.Limits)) {
		if v := p.Limits[field]; v != nil && *v < 0 {
			errs = append(errs, fmt.Errorf("plan %s: negative limit %s=%d", p.ID, field, *v))
		}
	}
	return errors.Join(errs...)
}

func capOf(n int64) *int64 { return &n }

// DefaultCatalog returns the free, pro and premium tiers of the invoicing product.
func DefaultCatalog() map[string]Plan {
	return map[string]Plan{
		string(entitlement.PlanFree): {
			ID:   string(entitlement.PlanFree),
			Name: "Free",
			Limits: map[string]*int64{
				entitlement.FieldInvoicesPerMonth: capOf(5),
				entitlement.FieldClients:          capOf(10),
				entitlement.FieldExpensesPerMonth: capOf(20),
				entitlement.FieldBusinesses:       capOf(1),
				entitlement.FieldProducts:         capOf(50),
			},
			Features: map[string]bool{
				entitlement.FieldForecastAnalytics: false,
				entitlement.FieldCSVExport:         false,
				entitlement.FieldPremiumPDF:        false,
				entitlement.FieldCustomThemes:      false,
			},
		},
		string(entitlement.PlanPro): {
			ID:   string(entitlement.PlanPro),
			Name: "Pro",
			Limits: map[string]*int64{
				entitlement.FieldInvoicesPerMonth: capOf(100),
				entitlement.FieldClients:          nil,
				entitlement.FieldExpensesPerMonth: nil,
				entitlement.FieldBusinesses:       capOf(5),
				entitlement.FieldProducts:         nil,
			},
			Features: map[string]bool{
				entitlement.FieldForecastAnalytics: true,
				entitlement.FieldCSVExport:         true,
				entitlement.FieldPremiumPDF:        true,
				entitlement.FieldCustomThemes:      false,
			},
		},
		string(entitlement.PlanPremium): {
			ID:   string(entitlement.PlanPremium),
			Name: "Premium",
			Limits: map[string]*int64{
				entitlement.FieldInvoicesPerMonth: nil,
				entitlement.FieldClients:          nil,
				entitlement.FieldExpensesPerMonth: nil,
				entitlement.FieldBusinesses:       nil,
				entitlement.FieldProducts:         nil,
			},
			Features: map[string]bool{
				entitlement.FieldForecastAnalytics: true,
				entitlement.FieldCSVExport:         true,
				entitlement.FieldPremiumPDF:        true,
				entitlement.FieldCustomThemes:      true,
			},
		},
	}
}
