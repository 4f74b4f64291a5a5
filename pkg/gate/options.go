package gate

import (
	"log/slog"

	"golang.org/x/text/language"
)

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger for attempt events. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithLanguage selects the language of prompts and default messages.
// Unsupported languages fall back to Azerbaijani.
func WithLanguage(tag language.Tag) Option {
	return func(f *Flow) {
		f.copy = newCopywriter(tag)
	}
}

// WithDefaultErrorMessage replaces the text shown for failures without server detail.
func WithDefaultErrorMessage(msg string) Option {
	return func(f *Flow) {
		f.defaultErr = msg
	}
}

// WithIdentity binds every check to the account reported by src, so demo
// accounts are recognised after login without rebuilding the flow.
func WithIdentity(src IdentitySource) Option {
	return func(f *Flow) {
		f.identity = src
	}
}

// WithFreshPrecheck makes pre-checks wait for a fresh snapshot. If the fetch
// fails the cached snapshot, or none, is used.
func WithFreshPrecheck() Option {
	return func(f *Flow) {
		f.freshPrecheck = true
	}
}

// WithAttemptIDFunc replaces the attempt id generator, for tests.
func WithAttemptIDFunc(fn func() string) Option {
	return func(f *Flow) {
		if fn != nil {
			f.newID = fn
		}
	}
}
