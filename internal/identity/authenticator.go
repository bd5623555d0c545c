package identity

import (
	"errors"
	"net/http"
	"strings"

	authmw "felicity/pkg/platform/middleware/auth"
)

// Authenticator implements authmw.SessionResolver. Resolution order matters:
// the legacy cookie is tried first, then the provider bearer token, matching
// what deployed clients actually send.
type Authenticator struct {
	legacy   *LegacyTokenService
	provider ProviderVerifier // nil when the provider path is disabled
	roles    RoleDirectory
}

func NewAuthenticator(legacy *LegacyTokenService, provider ProviderVerifier, roles RoleDirectory) *Authenticator {
	return &Authenticator{legacy: legacy, provider: provider, roles: roles}
}

// Resolve authenticates the request via either credential path and returns
// normalized claims.
func (a *Authenticator) Resolve(r *http.Request) (*authmw.SessionClaims, error) {
	if cookie, err := r.Cookie(LegacyCookieName); err == nil && cookie.Value != "" {
		session, err := a.legacy.Validate(cookie.Value)
		if err == nil {
			return &authmw.SessionClaims{
				UserID: session.AuthID,
				Role:   session.Role,
				Source: SourceLegacy,
			}, nil
		}
		// An invalid cookie falls through to the provider path; clients
		// carrying both credentials shouldn't be locked out by a stale one.
	}

	if a.provider != nil {
		const bearerPrefix = "Bearer "
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok && token != "" {
			session, err := a.provider.Verify(r.Context(), token)
			if err != nil {
				return nil, err
			}
			role, err := a.roles.RoleByAuthID(r.Context(), session.Subject)
			if err != nil {
				return nil, err
			}
			return &authmw.SessionClaims{
				UserID: session.Subject,
				Role:   role,
				Source: SourceProvider,
			}, nil
		}
	}

	return nil, errors.New("no usable credential")
}
