package jwt

import "errors"

var (
	ErrSecretRequired = errors.New("jwt: signing secret is required")
	ErrMissingToken   = errors.New("jwt: missing bearer token")
	ErrInvalidToken   = errors.New("jwt: invalid token")
	ErrExpiredToken   = errors.New("jwt: token has expired")
	ErrInvalidSubject = errors.New("jwt: subject is not a user id")
)
