package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a JWT access token without its key.
// It is for display only; the backend remains the judge of validity.
type TokenInfo struct {
	Subject   string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token's exp claim is in the past relative to now
func (i *TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying its signature.
// Opaque tokens return an error.
func InspectToken(token string) (*TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time
		info.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		info.ExpiresAt = &t
	}
	return info, nil
}
