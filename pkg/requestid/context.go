package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// WithContext stores id as the correlation id of ctx. Invalid ids are ignored.
func WithContext(ctx context.Context, id string) context.Context {
	if !Valid(id) {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation id of ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Ensure returns ctx unchanged when it already carries an id, otherwise a
// child context with a new UUID.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, contextKey{}, id), id
}
