// Package gate runs user-triggered mutations against plan entitlements.
//
// Two strategies are supported and may be mixed per screen:
//
//   - RunChecked evaluates the cached snapshot first. When the plan denies the
//     action the upgrade prompt is shown and the mutation is never sent.
//   - RunOptimistic sends the mutation and reinterprets a plan rejection from
//     the server (code "plan_limit", or the word "limit" when no code is
//     present) as the same upgrade prompt.
//
// Every other failure is reported through Presenter.ShowError with the
// server's detail text, or a localized default. After a successful mutation
// the plan snapshot is refreshed before OnSuccess runs, so a following check
// sees the new usage count.
//
// Each Flow holds one attempt at a time and walks a small state machine:
//
//	Idle -> Checking -> Submitting -> Success -> Idle
//	             \            \-> Denied | Failed -> Idle (Dismiss)
//	              \-> Denied
//
// Client-side checks are advisory; the server remains the authority.
package gate
