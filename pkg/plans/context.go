package plans

import (
	"context"
	"log/slog"

	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/requestid"
)

// Tenant is the account and business a request is made for.
type Tenant struct {
	UserID     string
	BusinessID string
}

type tenantCtxKey struct{}

// WithTenant returns a copy of ctx carrying t.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantCtxKey{}, t)
}

// TenantFromContext returns the tenant set by the authentication middleware.
func TenantFromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(tenantCtxKey{}).(Tenant)
	return t, ok
}

// LogExtractors add the request id and the tenant ids of a request to log records.
func LogExtractors() []logger.ContextExtractor {
	return []logger.ContextExtractor{
		requestid.LogExtractor(),
		func(ctx context.Context) (slog.Attr, bool) {
			t, ok := TenantFromContext(ctx)
			return logger.UserID(t.UserID), ok && t.UserID != ""
		},
		func(ctx context.Context) (slog.Attr, bool) {
			t, ok := TenantFromContext(ctx)
			return logger.BusinessID(t.BusinessID), ok && t.BusinessID != ""
		},
	}
}
