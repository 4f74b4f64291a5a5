// Package planstatus caches plan status snapshots per (user, business)
// context and keeps them fresh with stale-while-revalidate semantics.
//
// The Provider is bound to a session.Session. Reads use the session's active
// context, so switching business or logging out immediately changes what is
// served:
//
//	p := planstatus.New(sess, planclient.New(cfg), planstatus.WithLogger(log))
//	defer p.Close()
//
//	st := p.Status(ctx)       // never blocks, starts fetches as needed
//	snap := p.Snapshot(ctx)   // nil until the first fetch succeeds
//	snap, err := p.Load(ctx)  // waits for a fresh snapshot
//	snap, err = p.Refresh(ctx) // after a create/delete mutation
//
// Snapshots are kept in memory only. A failed fetch is logged and reported in
// Status.Err; the previous snapshot stays available, and when none exists the
// caller receives nil, which the entitlement evaluator treats as permissive.
package planstatus
