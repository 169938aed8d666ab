package twofa

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const otpHashCost = 10

// GenerateOtp produces a cryptographically random 6-digit numeric code.
func GenerateOtp() (string, error) {
	// [100000, 999999]
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// HashOtp returns the bcrypt hash of a one-time code. Only the hash is ever
// persisted; the plaintext code exists solely in the delivery email.
func HashOtp(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), otpHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash one-time code: %w", err)
	}
	return string(hash), nil
}

// VerifyOtp compares a submitted code against a stored bcrypt hash.
func VerifyOtp(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// GenerateOtpAndHash generates a fresh code together with its storable hash.
func GenerateOtpAndHash() (code string, hash string, err error) {
	code, err = GenerateOtp()
	if err != nil {
		return "", "", err
	}
	hash, err = HashOtp(code)
	if err != nil {
		return "", "", err
	}
	return code, hash, nil
}
