package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry indicates the token carries no exp claim
var ErrNoExpiry = errors.New("token has no expiry claim")

// Claims represents the access token claims the client reads
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Decode extracts the claims from a raw access token without verifying
// its signature. The signing key never leaves the backend; the client
// only reads advisory metadata (expiry, user id) and the backend
// re-validates the token on every request.
func Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return claims, nil
}

// Expiry returns the expiry timestamp of a raw access token
func Expiry(raw string) (time.Time, error) {
	claims, err := Decode(raw)
	if err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}

	return claims.ExpiresAt.Time, nil
}
