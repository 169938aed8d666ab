package twofa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spendwise/spendwise/pkg/notice"
	"github.com/spendwise/spendwise/pkg/notification"
	"github.com/spendwise/spendwise/pkg/token"
	"github.com/spendwise/spendwise/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlzd/gotp"
)

type fixture struct {
	service  *TwoFaService
	repo     *InMemTwoFARepository
	users    *user.UserService
	manager  *notification.NotificationManager
	notifier *notification.MockNotifier
	user     user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	notifier := &notification.MockNotifier{}
	manager := notification.NewNotificationManager()
	manager.RegisterNotifier(notification.EmailSystem, notifier)
	err := manager.RegisterNotification(notice.TwofaCodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your 2FA Verification Code",
		Html:    "<p>{{.Code}}</p>",
	})
	require.NoError(t, err)

	users := user.NewUserService(user.NewInMemUserRepository())
	u, err := users.Register(context.Background(), user.RegisterParams{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	repo := NewInMemTwoFARepository()
	tokenService := token.NewJwtTokenService("test-secret", "spendwise", "spendwise")
	service := NewTwoFaService(repo, users, tokenService, manager)

	return &fixture{
		service:  service,
		repo:     repo,
		users:    users,
		manager:  manager,
		notifier: notifier,
		user:     u,
	}
}

// lastCode returns the plaintext code from the most recent delivery.
func (f *fixture) lastCode(t *testing.T) string {
	t.Helper()
	delivery, ok := f.notifier.Last()
	require.True(t, ok, "expected at least one notification")
	return delivery.Data["Code"]
}

// failingService returns a second service over the same repository and users
// whose notifier refuses every delivery.
func (f *fixture) failingService(t *testing.T) *TwoFaService {
	t.Helper()
	manager := notification.NewNotificationManager()
	manager.RegisterNotifier(notification.EmailSystem, &refusingNotifier{})
	err := manager.RegisterNotification(notice.TwofaCodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your 2FA Verification Code",
		Html:    "<p>{{.Code}}</p>",
	})
	require.NoError(t, err)
	tokenService := token.NewJwtTokenService("test-secret", "spendwise", "spendwise")
	return NewTwoFaService(f.repo, f.users, tokenService, manager)
}

type refusingNotifier struct{}

func (refusingNotifier) Send(noticeType notification.NoticeType, data notification.NotificationData, template notification.NoticeTemplate) error {
	return errors.New("smtp connection refused")
}

// faultyTwoFARepo simulates a store outage on reads.
type faultyTwoFARepo struct {
	TwoFARepository
	err error
}

func (r faultyTwoFARepo) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	return Record{}, r.err
}

func TestSetupInvalidMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Setup(context.Background(), f.user.ID, Method("SMS"))
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestSetupUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Setup(context.Background(), uuid.New(), MethodEmail)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestSetupEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)
	assert.Empty(t, result.Secret, "the email method never exposes a secret")
	assert.Empty(t, result.QrImage)

	require.Len(t, f.notifier.SentNotifications, 1, "one code should be delivered")
	assert.Equal(t, f.user.Email, f.notifier.SentNotifications[0].To)
	code := f.lastCode(t)
	assert.Len(t, code, 6, "codes are 6 digits")

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, MethodEmail, rec.Method)
	assert.False(t, rec.Verified)
	assert.True(t, rec.FirstLogin)
	assert.NotEqual(t, code, rec.SecretKey, "only the hash may be persisted")
	assert.True(t, VerifyOtp(rec.SecretKey, code), "the stored hash should match the delivered code")
}

func TestSetupAuthenticatorApp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Setup(ctx, f.user.ID, MethodAuthenticatorApp)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Secret, "the authenticator method returns the base32 secret")
	assert.True(t, strings.HasPrefix(result.OtpauthUrl, "otpauth://totp/"), "otpauth url should be returned")
	assert.True(t, strings.HasPrefix(result.QrImage, "data:image/png;base64,"), "QR image should be a png data uri")
	assert.Empty(t, f.notifier.SentNotifications, "no email is sent for authenticator setup")

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, MethodAuthenticatorApp, rec.Method)
	assert.Equal(t, result.Secret, rec.SecretKey)
	assert.False(t, rec.Verified)
}

func TestVerifyWithoutSetup(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Verify(context.Background(), f.user.ID, "123456")
	assert.ErrorIs(t, err, ErrNotSetUp)
}

func TestVerifyEmailCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)
	code := f.lastCode(t)

	result, err := f.service.Verify(ctx, f.user.ID, code)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken, "a session token is issued on success")
	assert.Equal(t, f.user.ID, result.User.ID)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, rec.Verified, "verification should be recorded")
	assert.False(t, rec.FirstLogin, "first login completes on first successful verification")
	require.NotNil(t, rec.LastUsed, "last used should be stamped")
}

func TestVerifyWrongCodeLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)

	_, err = f.service.Verify(ctx, f.user.ID, "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, rec.Verified)
	assert.True(t, rec.FirstLogin)
	assert.Nil(t, rec.LastUsed)
}

func TestVerifyTotpPasscode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Setup(ctx, f.user.ID, MethodAuthenticatorApp)
	require.NoError(t, err)

	// Compute the current passcode independently from the shared secret.
	passcode := gotp.NewDefaultTOTP(result.Secret).Now()

	verifyResult, err := f.service.Verify(ctx, f.user.ID, passcode)
	require.NoError(t, err)
	assert.NotEmpty(t, verifyResult.SessionToken)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, rec.Verified)
}

func TestVerifyWrongLengthTotpCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodAuthenticatorApp)
	require.NoError(t, err)

	// A 5-digit submission is a mismatch, never a server error.
	_, err = f.service.Verify(ctx, f.user.ID, "12345")
	assert.ErrorIs(t, err, ErrInvalidCode)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, rec.Verified)
}

func TestVerifyTotpFromDifferentSecretFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodAuthenticatorApp)
	require.NoError(t, err)

	passcode := gotp.NewDefaultTOTP(gotp.RandomSecret(20)).Now()

	_, err = f.service.Verify(ctx, f.user.ID, passcode)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestSetupReplacesPriorEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)
	oldCode := f.lastCode(t)

	_, err = f.service.Setup(ctx, f.user.ID, MethodAuthenticatorApp)
	require.NoError(t, err)

	// The email code from the replaced enrollment must no longer verify.
	_, err = f.service.Verify(ctx, f.user.ID, oldCode)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestResendOtp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)
	oldCode := f.lastCode(t)

	err = f.service.ResendOtp(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, f.notifier.SentNotifications, 2, "resend should deliver a fresh code")
	newCode := f.lastCode(t)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, rec.Verified, "resend resets the verified flag")
	assert.True(t, VerifyOtp(rec.SecretKey, newCode), "the fresh code should verify")
	if oldCode != newCode {
		assert.False(t, VerifyOtp(rec.SecretKey, oldCode), "the replaced code must not verify")
	}
}

func TestResendOtpNotApplicable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.service.ResendOtp(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotApplicable, "unknown user")

	err = f.service.ResendOtp(ctx, f.user.ID)
	assert.ErrorIs(t, err, ErrNotApplicable, "no enrollment")

	_, err = f.service.Setup(ctx, f.user.ID, MethodAuthenticatorApp)
	require.NoError(t, err)
	err = f.service.ResendOtp(ctx, f.user.ID)
	assert.ErrorIs(t, err, ErrNotApplicable, "authenticator enrollments have nothing to resend")
}

func TestResendOtpStoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	storeErr := errors.New("connection refused")
	tokenService := token.NewJwtTokenService("test-secret", "spendwise", "spendwise")
	svc := NewTwoFaService(faultyTwoFARepo{err: storeErr}, f.users, tokenService, f.manager)

	err := svc.ResendOtp(ctx, f.user.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotApplicable, "a store outage is not a client error")
	assert.ErrorIs(t, err, storeErr)
}

func TestSetupEmailDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.failingService(t).Setup(ctx, f.user.ID, MethodEmail)
	require.ErrorIs(t, err, notification.ErrDeliveryFailed)

	_, err = f.repo.Get(ctx, f.user.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound, "a failed delivery persists nothing")
}

func TestRotateEmailCodeDeliveryFailureKeepsOldCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)
	code := f.lastCode(t)

	err = f.failingService(t).RotateEmailCode(ctx, f.user.ID, f.user.Email)
	require.ErrorIs(t, err, notification.ErrDeliveryFailed)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, VerifyOtp(rec.SecretKey, code), "the prior code must remain checkable")
}

func TestResendOtpDeliveryFailureKeepsOldCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)
	code := f.lastCode(t)

	err = f.failingService(t).ResendOtp(ctx, f.user.ID)
	require.ErrorIs(t, err, notification.ErrDeliveryFailed)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, rec.Verified)
	assert.True(t, VerifyOtp(rec.SecretKey, code), "the prior code must remain checkable")
}

func TestRotateEmailCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)
	code := f.lastCode(t)
	_, err = f.service.Verify(ctx, f.user.ID, code)
	require.NoError(t, err)

	err = f.service.RotateEmailCode(ctx, f.user.ID, f.user.Email)
	require.NoError(t, err)

	rec, err := f.repo.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, rec.Verified, "rotation resets the verified flag")
	assert.True(t, VerifyOtp(rec.SecretKey, f.lastCode(t)), "the rotated code should verify")
}

func TestAdminReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.users.Register(ctx, user.RegisterParams{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "password123",
		Role:     user.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = f.service.Setup(ctx, f.user.ID, MethodEmail)
	require.NoError(t, err)

	err = f.service.AdminReset(ctx, f.user, f.user.ID)
	assert.ErrorIs(t, err, ErrForbidden, "a plain user cannot reset 2FA")

	err = f.service.AdminReset(ctx, admin, f.user.ID)
	require.NoError(t, err)

	_, err = f.service.Get(ctx, f.user.ID)
	assert.ErrorIs(t, err, ErrNotSetUp, "the record should be gone after reset")

	err = f.service.AdminReset(ctx, admin, f.user.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound, "resetting twice reports a missing record")
}
