package auth

import (
	"context"
	"log/slog"
	"net/http"

	request "felicity/pkg/platform/middleware/request"
)

// SessionClaims is the normalized result of resolving either credential path
// (legacy signed cookie or external provider session).
type SessionClaims struct {
	UserID string // external identity id
	Role   string
	Source string // which credential path authenticated the request
}

// SessionResolver authenticates a request. Implementations try the legacy
// cookie first and fall back to the provider bearer token.
type SessionResolver interface {
	Resolve(r *http.Request) (*SessionClaims, error)
}

// Context keys for storing authenticated user information.
type contextKeyUserID struct{}
type contextKeyRole struct{}
type contextKeySource struct{}

// Exported for tests that need context.WithValue directly.
var (
	ContextKeyUserID = contextKeyUserID{}
	ContextKeyRole   = contextKeyRole{}
	ContextKeySource = contextKeySource{}
)

// GetUserID retrieves the authenticated user id from the context.
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(ContextKeyUserID).(string); ok {
		return userID
	}
	return ""
}

// GetRole retrieves the caller's role from the context.
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(ContextKeyRole).(string); ok {
		return role
	}
	return ""
}

// GetSource retrieves the credential source ("legacy" or "provider").
func GetSource(ctx context.Context) string {
	if src, ok := ctx.Value(ContextKeySource).(string); ok {
		return src
	}
	return ""
}

// WithSession injects session claims into a context. Useful for handler unit
// tests that don't run the middleware chain.
func WithSession(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, ContextKeyRole, role)
	return ctx
}

// writeJSONError writes a JSON error response with the given status code.
func writeJSONError(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","message":"` + message + `"}`))
}

// RequireAuth rejects requests that carry neither a valid legacy session
// cookie nor a valid provider session, and places the normalized claims in
// the request context.
func RequireAuth(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := resolver.Resolve(r)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid session")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
			ctx = context.WithValue(ctx, ContextKeySource, claims.Source)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
