// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned for malformed, expired or tampered tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when a non-admin reaches an admin operation.
	ErrForbidden = errors.New("admin access required")
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

// Claims carried by every token.
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	AccountID string
	IsAdmin   bool
}

// Tokens signs HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewTokensWithClock is test-only for deterministic expiry.
func NewTokensWithClock(secret string, ttl time.Duration, now func() time.Time) *Tokens {
	t := NewTokens(secret, ttl)
	t.now = now
	return t
}

func (t *Tokens) Issue(accountID string, isAdmin bool) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID:  accountID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Authenticate(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{AccountID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}
