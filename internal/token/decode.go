package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Decode reads the claims of an access token without verifying its
// signature. The client never holds the signing key; the API verifies.
func Decode(access string) (*Claims, error) {
	if access == "" {
		return nil, ErrNoToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &claims, nil
}
