// Package plans is an in-process implementation of the entitlement service:
// a plan catalog, per-tenant usage counters, and the HTTP endpoints the
// planclient package talks to.
//
// It exists to run the client stack end to end during development and in
// tests. The catalog comes from DefaultCatalog, an in-memory map or a YAML
// document:
//
//	src, err := plans.NewYAMLSource(f)
//	usage := plans.NewMemoryUsage(nil)
//	svc, err := plans.NewService(ctx, src, usage.Counters(), plans.StaticPlans(assign, "free"))
//	http.ListenAndServe(":8080", plans.NewHandler(svc, usage))
//
// Service.CanCreate enforces quantity caps and returns *LimitError, which the
// handler turns into a 403 response with code "plan_limit".
package plans
