// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/danielhkuo/club-checkin/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingRole  = errors.New("token has no role")
)

// Principal is an authenticated caller.
type Principal struct {
	ID    int64
	Email string
	Role  string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// Resolver turns a bearer credential into a principal. A nil principal
// means anonymous.
type Resolver interface {
	Authenticate(token string) *Principal
}

type claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTResolver validates HS256 tokens signed with a shared secret.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

// Authenticate returns nil for an empty, malformed, expired or foreign token.
func (r *JWTResolver) Authenticate(token string) *Principal {
	if token == "" {
		return nil
	}
	p, err := r.Verify(token)
	if err != nil {
		return nil
	}
	return p
}

// Verify parses and validates token.
func (r *JWTResolver) Verify(token string) (*Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if c.Role == "" {
		return nil, ErrMissingRole
	}
	return &Principal{ID: c.ID, Email: c.Email, Role: c.Role}, nil
}

// Issue signs a token for p valid for ttl. Login lives elsewhere; this is
// for tooling and tests that need a credential the resolver accepts.
func (r *JWTResolver) Issue(p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:    p.ID,
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the credential from the Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// GenerateVoterToken creates a random anonymous voter token
func GenerateVoterToken() string {
	return uuid.NewString()
}
