// Package logger builds context-aware slog loggers shared by the delivery
// pipeline.
//
// New creates a *slog.Logger from functional options: output format and
// level, static attributes, and ContextExtractor callbacks that inject
// request-scoped values on every log call.
//
//	log := logger.New(
//	    logger.WithProduction("notify-worker"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	logger.SetAsDefault(log)
//
// Attribute constructors in attr.go (UserID, Channel, NotificationID, ...)
// keep field names consistent across packages. Error and Errors return an
// empty attr for nil errors, so they can be passed unconditionally:
//
//	log.Info("delivery finished", logger.Error(err))
package logger
