package twofa

import (
	"time"

	"github.com/google/uuid"
)

// Method is the active two-factor method for a user.
type Method string

const (
	MethodEmail            Method = "Email"
	MethodAuthenticatorApp Method = "AuthenticatorApp"
)

// Valid reports whether the method is one of the known 2FA methods.
func (m Method) Valid() bool {
	return m == MethodEmail || m == MethodAuthenticatorApp
}

// Record is the per-user 2FA enrollment. At most one record exists per user.
//
// SecretKey is method-tagged: a bcrypt hash of the latest one-time code when
// Method is Email, and a base32 TOTP seed when Method is AuthenticatorApp.
// The two encodings must never be compared across methods.
type Record struct {
	UserID     uuid.UUID  `json:"user_id"`
	Method     Method     `json:"method"`
	SecretKey  string     `json:"-"`
	Verified   bool       `json:"verified"`
	FirstLogin bool       `json:"first_login"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
