package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/focusflow/pkg/logger"
	"github.com/dmitrymomot/focusflow/pkg/validator"
)

// ErrorMapping translates errors matching Err (errors.Is) into an HTTPError.
type ErrorMapping struct {
	Err error
	HTTPError
}

type ErrorHandlerConfig struct {
	// Mappings are checked in order; the first match wins.
	Mappings []ErrorMapping
	// RetryAfter is advertised on 503 answers. Zero omits the header.
	RetryAfter time.Duration
}

// NewErrorHandler classifies err, logs it by severity and renders JSONError.
// Unmapped errors become 500 and are logged at error level.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx Context, err error) {
		resolved := classifyError(err, cfg.Mappings)

		var opts []JSONOption
		var httpErr HTTPError
		if errors.As(resolved, &httpErr) && httpErr.Code == http.StatusServiceUnavailable && cfg.RetryAfter > 0 {
			opts = append(opts, WithJSONHeader("Retry-After", strconv.Itoa(int(cfg.RetryAfter.Seconds()))))
		}

		logError(ctx, log, err, resolved)
		if rerr := JSONError(resolved, opts...).Render(ctx.ResponseWriter(), ctx.Request()); rerr != nil {
			log.ErrorContext(ctx, "failed to render error response", logger.Error(rerr))
		}
	}
}

// classifyError returns err unchanged when it already renders on its own,
// the mapped HTTPError when a mapping matches, and err otherwise.
func classifyError(err error, mappings []ErrorMapping) error {
	if validator.IsValidationError(err) {
		return err
	}
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			return m.HTTPError
		}
	}
	return err
}

func logError(ctx Context, log *slog.Logger, original, resolved error) {
	status := http.StatusInternalServerError
	var httpErr HTTPError
	switch {
	case validator.IsValidationError(resolved):
		status = http.StatusUnprocessableEntity
	case errors.As(resolved, &httpErr):
		status = httpErr.Code
	}

	switch {
	case status == http.StatusServiceUnavailable:
		log.WarnContext(ctx, "dependency unavailable", logger.Error(original))
	case status >= http.StatusInternalServerError:
		log.ErrorContext(ctx, "unhandled api error", logger.Error(original))
	default:
		log.DebugContext(ctx, "request rejected", slog.Int("status", status), logger.Error(original))
	}
}
