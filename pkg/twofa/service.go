package twofa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spendwise/spendwise/pkg/notice"
	"github.com/spendwise/spendwise/pkg/notification"
	"github.com/spendwise/spendwise/pkg/token"
	"github.com/spendwise/spendwise/pkg/user"
)

// TwoFactorService covers 2FA enrollment, code verification, OTP resend and
// administrative reset.
type TwoFactorService interface {
	Setup(ctx context.Context, userID uuid.UUID, method Method) (SetupResult, error)
	Verify(ctx context.Context, userID uuid.UUID, code string) (VerifyResult, error)
	ResendOtp(ctx context.Context, userID uuid.UUID) error
	AdminReset(ctx context.Context, acting user.User, targetUserID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (Record, error)
	RotateEmailCode(ctx context.Context, userID uuid.UUID, email string) error
}

type TwoFaService struct {
	repo                TwoFARepository
	userService         *user.UserService
	tokenService        token.TokenService
	notificationManager *notification.NotificationManager
}

// NewTwoFaService creates a new TwoFaService
func NewTwoFaService(repo TwoFARepository, userService *user.UserService, tokenService token.TokenService, notificationManager *notification.NotificationManager) *TwoFaService {
	return &TwoFaService{
		repo:                repo,
		userService:         userService,
		tokenService:        tokenService,
		notificationManager: notificationManager,
	}
}

type (
	// SetupResult carries the method-specific enrollment payload. Secret,
	// OtpauthUrl and QrImage are set only for the AuthenticatorApp method;
	// the Email method never returns the code to the caller.
	SetupResult struct {
		Message    string `json:"message"`
		Secret     string `json:"secret,omitempty"`
		OtpauthUrl string `json:"otpauthUrl,omitempty"`
		QrImage    string `json:"qrImage,omitempty"`
	}

	// VerifyResult carries the session token and public profile returned
	// after a successful verification.
	VerifyResult struct {
		User         user.User `json:"user"`
		SessionToken string    `json:"token"`
		ExpiresAt    time.Time `json:"-"`
	}
)

// Get loads the user's 2FA record. Returns ErrNotSetUp when none exists.
func (s *TwoFaService) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return Record{}, ErrNotSetUp
		}
		return Record{}, fmt.Errorf("failed to get 2FA record: %w", err)
	}
	return rec, nil
}

// Setup initiates 2FA enrollment for the chosen method, fully replacing any
// prior enrollment for the user.
func (s *TwoFaService) Setup(ctx context.Context, userID uuid.UUID, method Method) (SetupResult, error) {
	if !method.Valid() {
		return SetupResult{}, ErrInvalidMethod
	}

	u, err := s.userService.FindByID(ctx, userID)
	if err != nil {
		return SetupResult{}, err
	}

	var secretKey string
	result := SetupResult{Message: fmt.Sprintf("2FA setup initiated for %s.", method)}

	switch method {
	case MethodEmail:
		code, hash, err := GenerateOtpAndHash()
		if err != nil {
			return SetupResult{}, err
		}
		if err := s.sendTwofaCodeEmail(ctx, u.Email, code); err != nil {
			return SetupResult{}, err
		}
		secretKey = hash

	case MethodAuthenticatorApp:
		key, err := GenerateTotpKey(u.Email)
		if err != nil {
			return SetupResult{}, fmt.Errorf("failed to generate 2fa secret: %w", err)
		}
		qrImage, err := RenderQrDataUri(key)
		if err != nil {
			return SetupResult{}, err
		}
		secretKey = key.Secret()
		result = SetupResult{
			Message:    "Scan the QR code to complete setup.",
			Secret:     key.Secret(),
			OtpauthUrl: key.URL(),
			QrImage:    qrImage,
		}
	}

	err = s.repo.Upsert(ctx, UpsertParams{
		UserID:     userID,
		Method:     method,
		SecretKey:  secretKey,
		Verified:   false,
		FirstLogin: true,
	})
	if err != nil {
		return SetupResult{}, err
	}

	slog.Info("2FA setup initiated", "user_id", userID, "method", method)
	return result, nil
}

// Verify validates a submitted code against the stored secret and, on
// success, marks the enrollment verified and issues a session token.
func (s *TwoFaService) Verify(ctx context.Context, userID uuid.UUID, code string) (VerifyResult, error) {
	rec, err := s.Get(ctx, userID)
	if err != nil {
		return VerifyResult{}, err
	}

	var verified bool
	switch rec.Method {
	case MethodEmail:
		verified = VerifyOtp(rec.SecretKey, code)
	case MethodAuthenticatorApp:
		verified, err = ValidateTotpPasscode(rec.SecretKey, code)
		if err != nil {
			return VerifyResult{}, fmt.Errorf("failed to validate 2FA passcode: %w", err)
		}
	default:
		return VerifyResult{}, fmt.Errorf("unknown 2FA method on record: %s", rec.Method)
	}

	if !verified {
		slog.Warn("Invalid 2FA code submitted", "user_id", userID, "method", rec.Method)
		return VerifyResult{}, ErrInvalidCode
	}

	now := time.Now().UTC()
	update := UpdateParams{UserID: userID, LastUsed: &now}
	if !rec.Verified {
		t := true
		update.Verified = &t
	}
	if rec.FirstLogin {
		f := false
		update.FirstLogin = &f
	}
	if err := s.repo.Update(ctx, update); err != nil {
		return VerifyResult{}, fmt.Errorf("failed to update 2FA record: %w", err)
	}

	u, err := s.userService.FindByID(ctx, userID)
	if err != nil {
		return VerifyResult{}, err
	}

	sessionToken, expiresAt, err := s.tokenService.IssueSessionToken(u.ID, string(u.Role))
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("2FA verification successful", "user_id", userID, "method", rec.Method)
	return VerifyResult{User: u, SessionToken: sessionToken, ExpiresAt: expiresAt}, nil
}

// ResendOtp rotates the one-time code for an Email enrollment and delivers
// the fresh code. Verification state is reset to force re-verification.
func (s *TwoFaService) ResendOtp(ctx context.Context, userID uuid.UUID) error {
	u, err := s.userService.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrNotApplicable
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrNotApplicable
		}
		return fmt.Errorf("failed to get 2FA record: %w", err)
	}
	if rec.Method != MethodEmail {
		return ErrNotApplicable
	}

	code, hash, err := GenerateOtpAndHash()
	if err != nil {
		return err
	}
	if err := s.sendTwofaCodeEmail(ctx, u.Email, code); err != nil {
		return err
	}

	now := time.Now().UTC()
	notVerified := false
	err = s.repo.Update(ctx, UpdateParams{
		UserID:    userID,
		SecretKey: &hash,
		Verified:  &notVerified,
		LastUsed:  &now,
	})
	if err != nil {
		return fmt.Errorf("failed to rotate one-time code: %w", err)
	}

	slog.Info("One-time code resent", "user_id", userID)
	return nil
}

// RotateEmailCode issues a fresh one-time code for an Email enrollment during
// login: deliver the plaintext, then persist the new hash with verification
// reset. Delivery happens before persistence, so a failed send leaves the
// prior hash checkable.
func (s *TwoFaService) RotateEmailCode(ctx context.Context, userID uuid.UUID, email string) error {
	code, hash, err := GenerateOtpAndHash()
	if err != nil {
		return err
	}
	if err := s.sendTwofaCodeEmail(ctx, email, code); err != nil {
		return err
	}

	notVerified := false
	err = s.repo.Update(ctx, UpdateParams{
		UserID:    userID,
		SecretKey: &hash,
		Verified:  &notVerified,
	})
	if err != nil {
		return fmt.Errorf("failed to rotate one-time code: %w", err)
	}
	return nil
}

// AdminReset deletes the target's 2FA record entirely, forcing fresh
// enrollment on the next login.
func (s *TwoFaService) AdminReset(ctx context.Context, acting user.User, targetUserID uuid.UUID) error {
	if acting.Role != user.RoleAdmin {
		return ErrForbidden
	}

	count, err := s.repo.Delete(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to delete 2FA record: %w", err)
	}
	if count == 0 {
		return ErrRecordNotFound
	}

	slog.Info("2FA reset by admin", "admin_id", acting.ID, "target_user_id", targetUserID)
	return nil
}

func (s *TwoFaService) sendTwofaCodeEmail(ctx context.Context, email, code string) error {
	return s.notificationManager.Send(notice.TwofaCodeNotice, notification.NotificationData{
		To: email,
		Data: map[string]string{
			"Code": code,
		},
	})
}
