// Package planclient is the HTTP client for the entitlement service.
//
// Client.FetchStatus implements planstatus.Fetcher: it requests
// GET {base}/users/plan/status/?business_id=... with the session's bearer token
// and decodes the body into an entitlement.Snapshot. Idempotent requests are
// retried on 429 and 5xx responses with exponential backoff that honours
// Retry-After, and every request goes through a circuit breaker.
//
// Client.Create posts a new resource and returns rejections as *gate.APIError,
// so a gate.Flow running an optimistic action can tell plan limits apart from
// validation errors.
//
//	client, err := planclient.NewFromConfig(cfg, planclient.WithLogger(log))
//	provider := planstatus.New(sess, client)
package planclient
