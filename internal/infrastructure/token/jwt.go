// Package token issues and verifies the signed session tokens that carry
// identity and role between requests. Verification is stateless: a token
// stays valid until expiry even if the account behind it is deleted.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baketrak/order-system/internal/core/domain"
)

// TTL is the fixed token lifetime. Tokens are not refreshable.
const TTL = time.Hour

var (
	ErrNoSecret = errors.New("token: signing secret is not configured")
	ErrInvalid  = errors.New("token: invalid or expired token")
)

// Claims are the payload signed into every session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a process-wide HS256 secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a Manager. An empty secret is a configuration error and
// must abort startup.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = TTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for the given subject and role.
func (m *Manager) Issue(userID, role string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates raw, returning the identity it encodes.
// The check is pure: no store lookup, no I/O.
func (m *Manager) Verify(raw string) (domain.Identity, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return domain.Identity{}, ErrInvalid
	}
	return domain.Identity{UserID: claims.Subject, Role: claims.Role}, nil
}
