// Package entitlement evaluates plan limits and feature flags for a tenant.
//
// The evaluator is a pure, synchronous decision layer over a Snapshot of the
// tenant's plan, limits and usage as last reported by the entitlement service.
// It never returns errors and never blocks: missing data always degrades toward
// "allowed", because the authoritative enforcement happens server-side on every
// mutation. The checks here drive UX (upgrade prompts, disabled buttons) and are
// not a security boundary.
//
// Key concepts:
//
//   - Resource: a countable entity (invoices, clients, expenses, businesses, products)
//   - Feature: a plan-gated capability (forecast, csv_export, premium_pdf, custom_themes)
//   - Limit: a non-negative cap or Unlimited; the zero value is a cap of 0
//   - Snapshot: plan label + limits + usage for one (identity, business) context
//   - Decision: the result of a quantity check
//
// Each resource maps to a pair of wire fields (limit field, usage field) through
// a single lookup table, so adding a resource is one table entry.
//
// # Fail-open policy
//
// A nil snapshot, an unknown resource or feature, or a limit missing from the
// snapshot all resolve to "not restricted". This mirrors the product's observed
// behavior. Teams hardening this for a different authorization model should
// decide explicitly whether a fail-closed "unknown" state is required.
//
// # Demo identity
//
// One reserved account (DefaultDemoEmail unless overridden) is always treated as
// plan "pro" with every check allowed and every feature unlocked. The override
// is evaluated before the snapshot is consulted.
//
// # Usage
//
//	ev := entitlement.New().For(entitlement.Identity{UserID: "42", Email: email})
//
//	d := ev.CheckQuantity(snap, entitlement.ResourceClients)
//	if !d.Allowed {
//	    // show upgrade prompt with d.Limit
//	}
//
//	if ev.IsFeatureLocked(snap, entitlement.FeatureCSVExport) {
//	    // show feature-lock prompt
//	}
package entitlement
