package session

import (
	"context"
	"log/slog"

	"github.com/invoiceaz/planguard/pkg/logger"
)

type sessionContextKey struct{}

// WithSession adds a session to the context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves a session from the context
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok && session != nil
}

// MustFromContext retrieves a session from the context or panics
func MustFromContext(ctx context.Context) *Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return session
}

// UserIDExtractor adds the logged-in user id to log records.
func UserIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		s, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		id := s.Identity().UserID
		if id == "" {
			return slog.Attr{}, false
		}
		return logger.UserID(id), true
	}
}

// BusinessIDExtractor adds the active business id to log records.
func BusinessIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		s, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		id := s.ActiveBusiness()
		if id == "" {
			return slog.Attr{}, false
		}
		return logger.BusinessID(id), true
	}
}
