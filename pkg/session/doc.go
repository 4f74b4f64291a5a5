// Package session keeps the client-side authentication context: who is
// logged in, the bearer token used for API calls and which business is
// active.
//
// A Session is created once at application start and passed explicitly to
// the components that need it. Components that cache per-account data
// subscribe to changes and drop that data on business switch or logout:
//
//	sess := session.New(session.WithLogger(log))
//	unsubscribe := sess.Subscribe(func(c session.Change) {
//	    if c.Kind == session.ChangeLogout {
//	        cache.Purge()
//	    }
//	})
//	defer unsubscribe()
//
//	_ = sess.Login(entitlement.Identity{UserID: "42", Email: "a@b.az"}, token)
//	_ = sess.SwitchBusiness("7")
//
// # Roles
//
// RoleHint returns a locally remembered role for display. Capability checks
// go through ResolveRole or IsOwner, which always ask the RoleSource and
// refresh the hint with the answer.
//
// # Logging
//
// UserIDExtractor and BusinessIDExtractor plug into logger.WithContextExtractors
// and read the session stored with WithSession.
package session
