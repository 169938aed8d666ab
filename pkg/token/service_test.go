package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseSetupToken(t *testing.T) {
	svc := NewJwtTokenService("test-secret", "spendwise", "spendwise")
	userID := uuid.New()

	tokenStr, expiresAt, err := svc.IssueSetupToken(userID)
	require.NoError(t, err, "IssueSetupToken should not return an error")
	assert.NotEmpty(t, tokenStr, "setup token should not be empty")
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultSetupTokenExpiry), expiresAt, time.Second, "setup token expiry should be 5 minutes from now")

	claims, err := svc.ParseSetupToken(tokenStr)
	require.NoError(t, err, "ParseSetupToken should not return an error")
	assert.Equal(t, userID.String(), claims.UserID, "user id claim should match")
	assert.True(t, claims.Setup, "setup claim should be true")
	assert.Empty(t, claims.Role, "setup tokens carry no role")
}

func TestIssueAndParseSessionToken(t *testing.T) {
	svc := NewJwtTokenService("test-secret", "spendwise", "spendwise")
	userID := uuid.New()

	tokenStr, expiresAt, err := svc.IssueSessionToken(userID, "admin")
	require.NoError(t, err, "IssueSessionToken should not return an error")
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultSessionTokenExpiry), expiresAt, time.Second, "session token expiry should be 7 days from now")

	claims, err := svc.ParseSessionToken(tokenStr)
	require.NoError(t, err, "ParseSessionToken should not return an error")
	assert.Equal(t, userID.String(), claims.UserID, "user id claim should match")
	assert.Equal(t, "admin", claims.Role, "role claim should match")
	assert.False(t, claims.Setup, "session tokens are not setup tokens")
}

func TestParseRejectsWrongTokenKind(t *testing.T) {
	svc := NewJwtTokenService("test-secret", "spendwise", "spendwise")
	userID := uuid.New()

	setupToken, _, err := svc.IssueSetupToken(userID)
	require.NoError(t, err)
	sessionToken, _, err := svc.IssueSessionToken(userID, "user")
	require.NoError(t, err)

	_, err = svc.ParseSessionToken(setupToken)
	assert.ErrorIs(t, err, ErrWrongTokenKind, "a setup token is not a session token")

	_, err = svc.ParseSetupToken(sessionToken)
	assert.ErrorIs(t, err, ErrWrongTokenKind, "a session token is not a setup token")
}

func TestParseExpiredToken(t *testing.T) {
	svc := NewJwtTokenService("test-secret", "spendwise", "spendwise",
		WithSetupTokenExpiry(-time.Minute))

	tokenStr, _, err := svc.IssueSetupToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.ParseSetupToken(tokenStr)
	assert.ErrorIs(t, err, ErrTokenExpired, "an expired token should be rejected as expired")
}

func TestParseWrongSignature(t *testing.T) {
	svc := NewJwtTokenService("test-secret", "spendwise", "spendwise")
	other := NewJwtTokenService("other-secret", "spendwise", "spendwise")

	tokenStr, _, err := svc.IssueSessionToken(uuid.New(), "user")
	require.NoError(t, err)

	_, err = other.ParseSessionToken(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidSignature, "a token signed with another secret should be rejected")
}

func TestParseMalformedToken(t *testing.T) {
	svc := NewJwtTokenService("test-secret", "spendwise", "spendwise")

	_, err := svc.ParseSessionToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed, "garbage should be rejected as malformed")
}
