// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

// Package token implements the signed session token primitive as an
// HS256 JWT carrying the user identifier and an expiry.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatloop/chatloop/internal/auth"
)

// DefaultTTL is the default token validity window: 15 days, matching
// the session cookie lifetime.
const DefaultTTL = 15 * 24 * time.Hour

// Claims is the JWT payload: registered claims plus the user ID.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens with a symmetric key.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token Manager. TTL values <= 0 fall back to
// DefaultTTL.
func NewManager(secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, oops.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured validity window.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed token asserting the user identity.
func (m *Manager) Issue(userID ulid.ULID) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the asserted user
// identity. All failures carry auth.CodeInvalidToken; the caller maps
// them to an authentication failure without detail.
func (m *Manager) Verify(tokenString string) (ulid.ULID, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ulid.ULID{}, oops.Code(auth.CodeInvalidToken).Wrap(err)
	}
	if !parsed.Valid {
		return ulid.ULID{}, oops.Code(auth.CodeInvalidToken).Errorf("invalid token")
	}

	userID, err := ulid.Parse(claims.UserID)
	if err != nil {
		return ulid.ULID{}, oops.Code(auth.CodeInvalidToken).
			With("operation", "parse user id claim").
			Wrap(err)
	}
	return userID, nil
}

// Compile-time interface checks.
var (
	_ auth.TokenIssuer   = (*Manager)(nil)
	_ auth.TokenVerifier = (*Manager)(nil)
)
