package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

// requestLogger logs one record per request after it completes.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "http request", attrs...)
		})
	}
}

// currentUser returns the authenticated user or ErrUnauthenticated.
func currentUser(ctx context.Context) (uuid.UUID, string, error) {
	id, ok := entitlement.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, "", ErrUnauthenticated
	}
	email, _ := entitlement.GetEmailFromContext(ctx)
	return id, email, nil
}
