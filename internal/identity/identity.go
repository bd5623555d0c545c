// Package identity resolves inbound credentials to a normalized session.
// Two credential paths are accepted interchangeably: the legacy signed
// session cookie and the external identity provider's bearer token. The
// union is explicit: each path produces its own session type and a single
// normalization step maps either onto {UserID, Role}.
package identity

import "context"

// Role values stored on profiles and carried in legacy claims.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Credential sources, reported in the normalized claims for logging.
const (
	SourceLegacy   = "legacy"
	SourceProvider = "provider"
)

// LegacySession is a validated legacy cookie. The role travels inside the
// signed token, so no lookup is needed.
type LegacySession struct {
	AuthID string
	Role   string
}

// ProviderSession is a validated provider token. The provider knows nothing
// about fest roles, so the role comes from the caller's profile.
type ProviderSession struct {
	Subject string
	Email   string
}

// ProviderVerifier checks a provider bearer token. The provider is opaque:
// all we require is a stable subject id and the profile claims it exposes.
type ProviderVerifier interface {
	Verify(ctx context.Context, token string) (*ProviderSession, error)
}

// RoleDirectory resolves a user's role from persistent state. Implemented by
// the profile service; returns RoleUser for identities with no profile yet
// (first login, onboarding not submitted).
type RoleDirectory interface {
	RoleByAuthID(ctx context.Context, authID string) (string, error)
}
