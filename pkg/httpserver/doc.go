// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run binds the configured address, calls start hooks with the bound
// address and serves until its context is cancelled, the process receives
// SIGINT or SIGTERM, or Shutdown is called. Shutdown drains in-flight requests
// within the configured timeout.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthHandler serves liveness and readiness probes as JSON.
package httpserver
