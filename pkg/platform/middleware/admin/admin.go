package admin

import (
	"log/slog"
	"net/http"

	auth "felicity/pkg/platform/middleware/auth"
	request "felicity/pkg/platform/middleware/request"
)

// RequireRole gates a route on the caller's role claim. Must run after
// auth.RequireAuth; an empty role in context means the chain is miswired and
// the request is rejected.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := auth.GetRole(ctx)
			if !allowed[role] {
				logger.WarnContext(ctx, "role check failed",
					"role", role,
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","message":"admin access required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
