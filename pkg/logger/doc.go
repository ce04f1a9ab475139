// Package logger builds slog loggers with environment presets, context
// extractors and a shared set of attribute helpers.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "authserver"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "user signed up",
//	    logger.UserID(user.ID),
//	    logger.Email(user.Email), // masked
//	)
//
// Context extractors run on every Handle call, so request-scoped values such
// as the request id are attached without threading a logger through handlers.
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
