package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware logs each request after it completes.
// Server errors are logged at error level, client errors at warn.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				FieldRequestID, middleware.GetReqID(r.Context()),
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldStatus, status,
				FieldDuration, time.Since(start).Milliseconds(),
			}

			switch {
			case status >= 500:
				logger.ErrorContext(r.Context(), "request failed", args...)
			case status >= 400:
				logger.WarnContext(r.Context(), "request rejected", args...)
			default:
				logger.DebugContext(r.Context(), "request completed", args...)
			}
		})
	}
}
