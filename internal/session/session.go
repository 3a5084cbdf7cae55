// Package session issues and verifies the bearer JWTs that carry a
// principal's subject and role between the HTTP collaborator and the RBAC
// middleware. Grounded on the auth middleware of the teacher repo, adapted
// from its bcrypt-login flow to the store-backed UserService.Authenticate
// call (password verification itself lives in internal/security).
package session

import (
	"crypto/sha256"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// Claims is the JWT payload: subject (username), role, and the standard
// registered claims (issuer, issued-at, expiry).
type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and parses session tokens.
type Issuer struct {
	key []byte
	ttl time.Duration
}

// NewIssuer derives the actual HMAC signing key from secret via HKDF-SHA256
// rather than using the configured secret bytes directly, so a short or
// low-entropy operator-supplied secret doesn't map 1:1 onto the signing key.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("condo-manager-session-key"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return &Issuer{key: key, ttl: ttl}, nil
}

// Issue signs a new token for sub/role.
func (i *Issuer) Issue(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "condo-manager",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Parse validates tokenStr and returns its claims.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
