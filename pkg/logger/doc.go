// Package logger builds log/slog loggers for planguard components.
//
// New returns a *slog.Logger configured through functional options (format,
// level, output, static attributes) and wraps the handler so registered
// ContextExtractor callbacks add attributes from the context passed to each
// log call. This is how the active user and business end up on every record
// without threading them through call sites.
//
// Attribute helpers (Error, UserID, BusinessID, Resource, Feature, Plan, ...)
// keep key names consistent across packages. Components that accept an
// optional logger fall back to Nop.
//
// # Usage
//
//	log, err := logger.NewFromConfig(cfg,
//	    logger.WithContextExtractors(session.UserIDExtractor(), session.BusinessIDExtractor()),
//	)
//	if err != nil {
//	    return err
//	}
//	log.InfoContext(ctx, "plan status refreshed", logger.Plan(string(snap.Plan)))
package logger
