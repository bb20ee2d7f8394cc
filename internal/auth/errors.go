package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginFailed        = errors.New("login failed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingIDPhotos    = errors.New("both front and back photos of the ID are required")
)
