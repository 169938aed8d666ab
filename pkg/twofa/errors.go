package twofa

import "errors"

var (
	// ErrInvalidMethod is returned when a 2FA method is not Email or AuthenticatorApp
	ErrInvalidMethod = errors.New("invalid 2FA method")

	// ErrNotSetUp is returned when no 2FA record exists for the user
	ErrNotSetUp = errors.New("2FA not set up for this user")

	// ErrInvalidCode is returned when a submitted code does not verify
	ErrInvalidCode = errors.New("invalid 2FA code")

	// ErrNotApplicable is returned when resend is requested without an Email enrollment
	ErrNotApplicable = errors.New("resend not applicable or method mismatch")

	// ErrForbidden is returned when a non-admin attempts an administrative reset
	ErrForbidden = errors.New("access denied")

	// ErrRecordNotFound is returned when deleting a 2FA record that does not exist
	ErrRecordNotFound = errors.New("2FA record not found for user")
)
