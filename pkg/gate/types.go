package gate

import (
	"context"

	"github.com/invoiceaz/planguard/pkg/entitlement"
)

// Target is what an action is gated on: a countable resource or a feature.
type Target struct {
	resource entitlement.Resource
	feature  entitlement.Feature
}

// ForResource gates an action on the quantity limit of res.
func ForResource(res entitlement.Resource) Target {
	return Target{resource: res}
}

// ForFeature gates an action on the feature flag of f.
func ForFeature(f entitlement.Feature) Target {
	return Target{feature: f}
}

// Resource returns the gated resource, if the target is a resource.
func (t Target) Resource() (entitlement.Resource, bool) {
	return t.resource, t.resource != ""
}

// Feature returns the gated feature, if the target is a feature.
func (t Target) Feature() (entitlement.Feature, bool) {
	return t.feature, t.feature != ""
}

func (t Target) String() string {
	if t.feature != "" {
		return "feature:" + string(t.feature)
	}
	return "resource:" + string(t.resource)
}

func (t Target) valid() bool {
	return (t.resource != "") != (t.feature != "")
}

// Action is one user-triggered mutation, e.g. "create client".
type Action struct {
	Name   string
	Target Target
	// DisplayName overrides the localized resource or feature label in prompts.
	DisplayName string
	// Mutate performs the server call. Rejections should be returned as *APIError.
	Mutate func(ctx context.Context) error
	// OnSuccess refetches dependent data, e.g. the resource list. Optional.
	OnSuccess func(ctx context.Context)
	// Title and Message override the feature-lock prompt copy. Optional.
	Title   string
	Message string
}

// UpgradePrompt is what the presenter shows instead of a generic error when
// a plan denies an action.
type UpgradePrompt struct {
	Resource    entitlement.Resource
	Feature     entitlement.Feature
	DisplayName string
	// Limit is the numeric cap for quantity denials. Unlimited for feature locks.
	Limit entitlement.Limit
	// FeatureLock marks denials that come from a feature flag rather than a count.
	FeatureLock bool
	Title       string
	Message     string
}

// Presenter is the UI surface a flow reports to.
type Presenter interface {
	ShowUpgradePrompt(ctx context.Context, p UpgradePrompt)
	ShowError(ctx context.Context, msg string)
	CloseDialog(ctx context.Context)
}

// StatusProvider supplies plan snapshots. *planstatus.Provider implements it.
type StatusProvider interface {
	Snapshot(ctx context.Context) *entitlement.Snapshot
	Load(ctx context.Context) (*entitlement.Snapshot, error)
	Refresh(ctx context.Context) (*entitlement.Snapshot, error)
}

// IdentitySource reports the account checks are made for. *session.Session implements it.
type IdentitySource interface {
	Identity() entitlement.Identity
}

// Outcome reports how an attempt ended.
type Outcome struct {
	AttemptID string
	State     State
	// Prompt is set when the attempt was denied.
	Prompt *UpgradePrompt
	// ErrMessage is the text passed to Presenter.ShowError.
	ErrMessage string
	// Err is the mutation error, or a flow error such as ErrActionInProgress.
	Err error
}
