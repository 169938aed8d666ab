package token

import "errors"

var (
	// ErrTokenExpired is returned when a token's expiry has passed
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenMalformed is returned when a token cannot be parsed at all
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrInvalidSignature is returned when a token's signature does not verify
	ErrInvalidSignature = errors.New("token signature is invalid")

	// ErrWrongTokenKind is returned when a setup token is presented where a
	// session token is required, or vice versa
	ErrWrongTokenKind = errors.New("wrong token kind")
)
