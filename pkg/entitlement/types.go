package entitlement

import "strings"

// Resource represents a countable tenant resource type.
type Resource string

const (
	ResourceInvoices   Resource = "invoices"
	ResourceClients    Resource = "clients"
	ResourceExpenses   Resource = "expenses"
	ResourceBusinesses Resource = "businesses"
	ResourceProducts   Resource = "products"
)

// Feature represents a plan-specific capability that can be locked or unlocked.
type Feature string

const (
	FeatureForecast     Feature = "forecast"
	FeatureCSVExport    Feature = "csv_export"
	FeaturePremiumPDF   Feature = "premium_pdf"
	FeatureCustomThemes Feature = "custom_themes"
)

// PlanLabel is the tenant's subscription tier as reported by the service.
// The set is open: unknown labels are kept verbatim.
type PlanLabel string

const (
	PlanFree    PlanLabel = "free"
	PlanPro     PlanLabel = "pro"
	PlanPremium PlanLabel = "premium"
)

// IsPaid reports whether the label is one of the paid tiers.
func (p PlanLabel) IsPaid() bool {
	return p == PlanPro || p == PlanPremium
}

// Identity is the authenticated account a snapshot belongs to.
type Identity struct {
	UserID string
	Email  string
}

// IsZero reports whether no account is authenticated.
func (i Identity) IsZero() bool {
	return i.UserID == "" && i.Email == ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
