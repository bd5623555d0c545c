package recovery

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	request "felicity/pkg/platform/middleware/request"
)

// Recover converts downstream panics into a 500 JSON envelope. The stack is
// logged server-side only; the client sees a generic message.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := r.Context()
					logger.ErrorContext(ctx, "panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"request_id", request.GetRequestID(ctx),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal_error","message":"something went wrong"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
