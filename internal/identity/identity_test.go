package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	session *ProviderSession
	err     error
	calls   int
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*ProviderSession, error) {
	s.calls++
	return s.session, s.err
}

type stubRoles struct {
	role string
}

func (s *stubRoles) RoleByAuthID(context.Context, string) (string, error) {
	if s.role == "" {
		return RoleUser, nil
	}
	return s.role, nil
}

func TestLegacyTokenRoundTrip(t *testing.T) {
	svc := NewLegacyTokenService("test-key", time.Hour)
	token, err := svc.Issue("auth-123", RoleAdmin)
	require.NoError(t, err)

	session, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "auth-123", session.AuthID)
	assert.Equal(t, RoleAdmin, session.Role)
}

func TestLegacyTokenRejectsWrongKey(t *testing.T) {
	token, err := NewLegacyTokenService("key-a", time.Hour).Issue("auth-123", RoleUser)
	require.NoError(t, err)

	_, err = NewLegacyTokenService("key-b", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestLegacyTokenRejectsExpired(t *testing.T) {
	svc := NewLegacyTokenService("test-key", -time.Minute)
	token, err := svc.Issue("auth-123", RoleUser)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestResolvePrefersLegacyCookie(t *testing.T) {
	legacy := NewLegacyTokenService("test-key", time.Hour)
	verifier := &stubVerifier{session: &ProviderSession{Subject: "provider-sub"}}
	auth := NewAuthenticator(legacy, verifier, &stubRoles{})

	token, err := legacy.Issue("legacy-sub", RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/teams", nil)
	req.AddCookie(&http.Cookie{Name: LegacyCookieName, Value: token})
	req.Header.Set("Authorization", "Bearer provider-token")

	claims, err := auth.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "legacy-sub", claims.UserID)
	assert.Equal(t, SourceLegacy, claims.Source)
	assert.Zero(t, verifier.calls, "provider must not be called when the cookie validates")
}

func TestResolveFallsBackToProvider(t *testing.T) {
	legacy := NewLegacyTokenService("test-key", time.Hour)
	verifier := &stubVerifier{session: &ProviderSession{Subject: "provider-sub", Email: "u@iiit.ac.in"}}
	auth := NewAuthenticator(legacy, verifier, &stubRoles{role: RoleAdmin})

	req := httptest.NewRequest(http.MethodGet, "/teams", nil)
	req.AddCookie(&http.Cookie{Name: LegacyCookieName, Value: "garbage"})
	req.Header.Set("Authorization", "Bearer provider-token")

	claims, err := auth.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "provider-sub", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role, "role comes from the profile directory")
	assert.Equal(t, SourceProvider, claims.Source)
}

func TestResolveNoCredential(t *testing.T) {
	auth := NewAuthenticator(NewLegacyTokenService("k", time.Hour), &stubVerifier{}, &stubRoles{})
	req := httptest.NewRequest(http.MethodGet, "/teams", nil)

	_, err := auth.Resolve(req)
	assert.Error(t, err)
}
