// Package requestid carries a correlation id through contexts, HTTP headers
// and log records.
//
// A gated action stores its attempt id with WithContext; the entitlement client
// sends it as X-Request-ID, and the server side Middleware reuses it, so one
// id follows an action from the flow to the server logs. Client-supplied ids
// that are empty, longer than 128 characters or contain anything but
// letters, digits, '-' and '_' are replaced by a new UUID.
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//	log := logger.New(logger.WithContextExtractors(requestid.LogExtractor()))
package requestid
