package auth

import "errors"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures, foreign
	// issuers and tokens without an expiry or user.
	ErrInvalidToken = errors.New("invalid authentication token")

	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")

	// ErrWrongTokenType is a well-formed token issued for another purpose.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrWeakSecret is returned for signing secrets shorter than MinSecretLength.
	ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")
)
