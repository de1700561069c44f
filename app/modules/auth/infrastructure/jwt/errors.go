package authjwt

import "errors"

// Validation failures. The API answers all of them with 401 and never echoes which one.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrInvalidRole covers both signing and reading a token with an unknown tier.
	ErrInvalidRole = errors.New("invalid role")
)
