package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/emailauth/pkg/logger"
	"github.com/dmitrymomot/emailauth/pkg/requestid"
)

// NewErrorHandler returns an ErrorHandler that logs err with request
// metadata and renders it with JSONError. Client errors are logged at warn
// level, server errors at error level.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		resp := JSONError(err).(*jsonResponse)

		level := slog.LevelError
		if resp.status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			logger.Status(resp.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)

		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response",
				logger.Error(renderErr),
				logger.Event("render_error"),
			)
		}
	}
}
