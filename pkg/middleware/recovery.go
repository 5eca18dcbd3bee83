package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/httputil"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/logger"
)

// Recovery recovers from panics and returns a 500 error instead of crashing.
// The body uses the same envelope as httputil.WriteError so a panic is
// indistinguishable from any other internal error to clients.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
						Error: &httputil.ErrorResponse{
							Code:      "INTERNAL_ERROR",
							Message:   "an internal error occurred",
							RequestID: logger.CorrelationIDFromContext(r.Context()),
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
