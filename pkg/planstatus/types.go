package planstatus

import (
	"context"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/session"
)

// FetchRequest carries everything a Fetcher needs to ask the entitlement
// service for one account and business context.
type FetchRequest struct {
	Identity   entitlement.Identity
	Token      string
	BusinessID string
}

// Fetcher retrieves a plan status snapshot. Implementations must honour ctx.
type Fetcher interface {
	FetchStatus(ctx context.Context, req FetchRequest) (*entitlement.Snapshot, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req FetchRequest) (*entitlement.Snapshot, error)

func (f FetcherFunc) FetchStatus(ctx context.Context, req FetchRequest) (*entitlement.Snapshot, error) {
	return f(ctx, req)
}

// Key identifies one cached snapshot.
type Key struct {
	UserID     string
	BusinessID string
}

// KeyOf returns the cache key for a session state.
func KeyOf(st session.State) Key {
	return Key{UserID: st.Identity.UserID, BusinessID: st.BusinessID}
}

func (k Key) String() string {
	return k.UserID + "|" + k.BusinessID
}

// State describes how usable the returned snapshot is.
type State int

const (
	// NotLoaded means there is no snapshot and no fetch is running, e.g. logged out
	// or the last fetch failed.
	NotLoaded State = iota
	// Loading means a fetch is running and no snapshot is available yet.
	Loading
	// Ready means the snapshot is fresh.
	Ready
	// Stale means the snapshot is older than the staleness window (or was
	// invalidated) and a refresh has been started.
	Stale
)

func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Status is a non-blocking view of the active context's plan status.
// Snapshot is nil unless State is Ready or Stale. Err holds the cause of the
// most recent failed fetch for the key, if any.
type Status struct {
	Key      Key
	State    State
	Snapshot *entitlement.Snapshot
	Err      error
}
