package planstatus

import "errors"

var (
	// ErrNotAuthenticated is returned by blocking reads when no user is logged in.
	ErrNotAuthenticated = errors.New("planstatus: not authenticated")

	// ErrEmptySnapshot is returned when a fetcher reports success without a snapshot.
	ErrEmptySnapshot = errors.New("planstatus: fetcher returned no snapshot")

	// ErrBusinessMismatch is returned when a snapshot describes a different business than requested.
	ErrBusinessMismatch = errors.New("planstatus: snapshot business does not match request")

	// ErrSuperseded is returned when the session moved on or the key was
	// invalidated while the fetch was running. The result was discarded.
	ErrSuperseded = errors.New("planstatus: fetch result superseded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("planstatus: provider closed")
)
