package token

import "errors"

var (
	ErrNoToken             = errors.New("token: empty access token")
	ErrInvalidToken        = errors.New("token: invalid access token")
	ErrMissingRefreshToken = errors.New("token: missing refresh token")
	ErrInvalidRefreshToken = errors.New("token: invalid refresh token")
	ErrRefreshTokenReused  = errors.New("token: refresh token reused")
)
