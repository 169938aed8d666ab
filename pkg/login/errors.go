package login

import "errors"

var (
	// ErrMissingCredentials is returned when email or password is absent
	ErrMissingCredentials = errors.New("please provide email and password")

	// ErrInvalidCredentials is returned for an unknown email, a wrong
	// password, or an inactive account. Deliberately generic so the caller
	// cannot tell which factor failed.
	ErrInvalidCredentials = errors.New("invalid email or password, or account is inactive")
)
