package session

import "errors"

var (
	// ErrInvalidIdentity indicates Login was called without a user id.
	ErrInvalidIdentity = errors.New("session.invalid_identity")

	// ErrNotAuthenticated indicates the operation needs a logged-in user.
	ErrNotAuthenticated = errors.New("session.not_authenticated")

	// ErrNoActiveBusiness indicates no business context is selected.
	ErrNoActiveBusiness = errors.New("session.no_active_business")

	// ErrNoRoleSource indicates a role lookup was requested without a source.
	ErrNoRoleSource = errors.New("session.no_role_source")

	// ErrSessionChanged indicates the session was logged out or switched while a lookup ran.
	ErrSessionChanged = errors.New("session.changed")
)
