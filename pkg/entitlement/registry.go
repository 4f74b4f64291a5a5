package entitlement

import "slices"

// Wire field names used by the plan status endpoint.
const (
	FieldInvoicesPerMonth  = "invoices_per_month"
	FieldClients           = "clients"
	FieldExpensesPerMonth  = "expenses_per_month"
	FieldBusinesses        = "businesses"
	FieldProducts          = "products"
	FieldForecastAnalytics = "forecast_analytics"
	FieldCSVExport         = "csv_export"
	FieldPremiumPDF        = "premium_pdf"
	FieldCustomThemes      = "custom_themes"

	FieldInvoicesThisMonth = "invoices_this_month"
	FieldExpensesThisMonth = "expenses_this_month"
)

type quantityRule struct {
	limitField string
	usageField string
}

// quantityRules is the single source of the resource -> (limit, usage) mapping.
var quantityRules = map[Resource]quantityRule{
	ResourceInvoices:   {limitField: FieldInvoicesPerMonth, usageField: FieldInvoicesThisMonth},
	ResourceClients:    {limitField: FieldClients, usageField: FieldClients},
	ResourceExpenses:   {limitField: FieldExpensesPerMonth, usageField: FieldExpensesThisMonth},
	ResourceBusinesses: {limitField: FieldBusinesses, usageField: FieldBusinesses},
	ResourceProducts:   {limitField: FieldProducts, usageField: FieldProducts},
}

var featureRules = map[Feature]string{
	FeatureForecast:     FieldForecastAnalytics,
	FeatureCSVExport:    FieldCSVExport,
	FeaturePremiumPDF:   FieldPremiumPDF,
	FeatureCustomThemes: FieldCustomThemes,
}

// Resources returns every recognized resource in stable order.
func Resources() []Resource {
	out := make([]Resource, 0, len(quantityRules))
	for r := range quantityRules {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Features returns every recognized feature in stable order.
func Features() []Feature {
	out := make([]Feature, 0, len(featureRules))
	for f := range featureRules {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Valid reports whether the resource is part of the closed resource set.
func (r Resource) Valid() bool {
	_, ok := quantityRules[r]
	return ok
}

// LimitField returns the wire field holding the resource's cap.
func (r Resource) LimitField() (string, bool) {
	rule, ok := quantityRules[r]
	return rule.limitField, ok
}

// UsageField returns the wire field holding the resource's current usage.
func (r Resource) UsageField() (string, bool) {
	rule, ok := quantityRules[r]
	return rule.usageField, ok
}

// Valid reports whether the feature is part of the closed feature set.
func (f Feature) Valid() bool {
	_, ok := featureRules[f]
	return ok
}

// Field returns the wire field holding the feature flag.
func (f Feature) Field() (string, bool) {
	field, ok := featureRules[f]
	return field, ok
}

func isFeatureField(field string) bool {
	for _, f := range featureRules {
		if f == field {
			return true
		}
	}
	return false
}
