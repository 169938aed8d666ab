package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spendwise/spendwise/pkg/token"
	"github.com/spendwise/spendwise/pkg/twofa"
	"github.com/spendwise/spendwise/pkg/user"
)

// NextStep tells the client which step completes the login.
type NextStep string

const (
	NextStepSetup  NextStep = "SETUP_2FA"
	NextStepVerify NextStep = "VERIFY_2FA"
)

// LoginOutcome is the result of credential verification. A session token is
// never part of the outcome; it is issued only after 2FA verification.
type LoginOutcome struct {
	NextStep   NextStep     `json:"nextStep"`
	UserID     uuid.UUID    `json:"userId"`
	Method     twofa.Method `json:"method,omitempty"`
	SetupToken string       `json:"setupToken,omitempty"`
	Message    string       `json:"message"`
}

// LoginService is the authentication orchestrator: it validates credentials,
// inspects the 2FA record and decides the next step of the flow.
type LoginService struct {
	userService      *user.UserService
	twoFactorService twofa.TwoFactorService
	tokenService     token.TokenService
}

// NewLoginService creates a new LoginService
func NewLoginService(userService *user.UserService, twoFactorService twofa.TwoFactorService, tokenService token.TokenService) *LoginService {
	return &LoginService{
		userService:      userService,
		twoFactorService: twoFactorService,
		tokenService:     tokenService,
	}
}

// Login verifies the credential pair and routes the caller to 2FA setup or
// verification. Side effects are confined to the Email branch, which rotates
// the one-time code and delivers it; every other branch is read-only.
func (s *LoginService) Login(ctx context.Context, email, password string) (LoginOutcome, error) {
	if email == "" || password == "" {
		return LoginOutcome{}, ErrMissingCredentials
	}

	u, err := s.userService.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return LoginOutcome{}, ErrInvalidCredentials
		}
		return LoginOutcome{}, fmt.Errorf("failed to find user: %w", err)
	}

	if u.Status == user.StatusInactive || !s.userService.ComparePassword(u, password) {
		return LoginOutcome{}, ErrInvalidCredentials
	}

	rec, err := s.twoFactorService.Get(ctx, u.ID)
	if err != nil {
		if errors.Is(err, twofa.ErrNotSetUp) {
			// First login or admin reset: direct to enrollment with a
			// short-lived setup token.
			setupToken, _, err := s.tokenService.IssueSetupToken(u.ID)
			if err != nil {
				return LoginOutcome{}, fmt.Errorf("failed to issue setup token: %w", err)
			}
			slog.Info("Login requires 2FA setup", "user_id", u.ID)
			return LoginOutcome{
				NextStep:   NextStepSetup,
				UserID:     u.ID,
				SetupToken: setupToken,
				Message:    "2FA required. Please choose a setup method.",
			}, nil
		}
		return LoginOutcome{}, err
	}

	if rec.Method == twofa.MethodEmail {
		// Fresh code for this login; verification state resets so the old
		// code cannot be replayed.
		if err := s.twoFactorService.RotateEmailCode(ctx, u.ID, u.Email); err != nil {
			return LoginOutcome{}, err
		}
	}

	slog.Info("Login requires 2FA verification", "user_id", u.ID, "method", rec.Method)
	return LoginOutcome{
		NextStep: NextStepVerify,
		UserID:   u.ID,
		Method:   rec.Method,
		Message:  fmt.Sprintf("2FA required. Please verify the code using %s.", rec.Method),
	}, nil
}
