package twofa

import (
	"errors"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	TOTP_ISSUER = "SpendWise"
	PERIOD      = 30
	SKEW        = 1
	SECRET_SIZE = 20
)

// GenerateTotpKey generates a fresh TOTP key for the given account label.
// The key embeds the issuer, account and base32 secret in its otpauth:// URL.
func GenerateTotpKey(accountName string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTP_ISSUER,
		AccountName: accountName,
		SecretSize:  SECRET_SIZE,
	})
	if err != nil {
		slog.Error("Failed to generate totp key", "accountName", accountName, "issuer", TOTP_ISSUER, "error", err)
		return nil, err
	}
	slog.Info("Generated new totp key", "accountName", accountName)
	return key, nil
}

// ValidateTotpPasscode checks a passcode against the stored base32 secret
// using the standard 30-second window with one step of clock skew tolerance.
func ValidateTotpPasscode(totpSecret, passcode string) (bool, error) {
	valid, err := totp.ValidateCustom(passcode, totpSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		// A passcode of the wrong length is a mismatch, not a system failure.
		if errors.Is(err, otp.ErrValidateInputInvalidLength) {
			return false, nil
		}
		slog.Error("Failed to validate totp passcode", "error", err)
		return false, err
	}
	return valid, nil
}
