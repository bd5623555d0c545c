package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LegacyCookieName is the session cookie set by the pre-provider stack.
// Still accepted so sessions issued before the provider migration keep
// working until they expire.
const LegacyCookieName = "fest_session"

type legacyClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// LegacyTokenService signs and validates legacy session tokens (HS256).
type LegacyTokenService struct {
	key []byte
	ttl time.Duration
}

func NewLegacyTokenService(signingKey string, ttl time.Duration) *LegacyTokenService {
	return &LegacyTokenService{key: []byte(signingKey), ttl: ttl}
}

// Issue mints a signed session token for the given identity.
func (s *LegacyTokenService) Issue(authID, role string) (string, error) {
	now := time.Now()
	claims := legacyClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   authID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign legacy session: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a legacy session token.
func (s *LegacyTokenService) Validate(tokenString string) (*LegacySession, error) {
	var claims legacyClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse legacy session: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid legacy session")
	}
	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	return &LegacySession{AuthID: claims.Subject, Role: role}, nil
}
