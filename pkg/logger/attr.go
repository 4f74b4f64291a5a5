package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the authenticated user under "user_id". Empty ids produce an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// BusinessID records the active business context under "business_id".
func BusinessID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("business_id", id)
}

// Resource records a gated resource under "resource".
func Resource(name string) slog.Attr {
	return slog.String("resource", name)
}

// Feature records a gated feature under "feature".
func Feature(name string) slog.Attr {
	return slog.String("feature", name)
}

// Plan records a plan label under "plan".
func Plan(label string) slog.Attr {
	return slog.String("plan", label)
}

// RequestID records an outbound or inbound request id under "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// AttemptID records a gated action attempt under "attempt_id".
func AttemptID(id string) slog.Attr {
	return slog.String("attempt_id", id)
}

// Duration records d under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component names the emitting package under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}
