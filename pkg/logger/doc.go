// Package logger builds the structured loggers used across subsync.
//
// New returns a *slog.Logger configured through functional options. The
// environment presets pick a sensible format and level:
//
//   - WithEnvironment("development", svc): text output, debug level
//   - WithEnvironment("production", svc): JSON output, info level
//
// Values stored in a context.Context can be attached to every record through
// ContextExtractor callbacks (see WithContextExtractors and WithContextValue).
// The request id extractor from pkg/requestid is the usual one.
//
// The attribute helpers in attr.go keep key names consistent between the
// client core, the gateway and the front ends:
//
//	log.WarnContext(ctx, "subscription lookup failed",
//	    logger.Component("subscription_sync"),
//	    logger.Generation(gen),
//	    logger.Error(err),
//	)
//
// Error and Errors return an empty attribute for nil errors, so callers do not
// need a nil check before logging.
package logger
