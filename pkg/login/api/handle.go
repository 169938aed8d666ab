package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spendwise/spendwise/pkg/login"
	"github.com/spendwise/spendwise/pkg/notification"
	"github.com/spendwise/spendwise/pkg/token"
	"github.com/spendwise/spendwise/pkg/user"
)

type Handle struct {
	loginService *login.LoginService
	userService  *user.UserService
	tokenService token.TokenService
}

// NewHandle creates a new Handle
func NewHandle(loginService *login.LoginService, userService *user.UserService, tokenService token.TokenService) *Handle {
	return &Handle{
		loginService: loginService,
		userService:  userService,
		tokenService: tokenService,
	}
}

// Routes returns a http.Handler for the auth API
func Routes(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}

type RegisterRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     user.Role `json:"role,omitempty"`
}

// Register creates a user account. No session token is issued; the response
// directs the client to 2FA setup with a short-lived setup token.
// (POST /register)
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	u, err := h.userService.Register(r.Context(), user.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields),
			errors.Is(err, user.ErrEmailTaken),
			errors.Is(err, user.ErrInvalidRole):
			fail(w, r, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Register error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Error registering user")
		}
		return
	}

	setupToken, _, err := h.tokenService.IssueSetupToken(u.ID)
	if err != nil {
		slog.Error("Failed to issue setup token", "err", err)
		fail(w, r, http.StatusInternalServerError, "Error registering user")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"message": "User registered. Proceed to 2FA setup.",
		"data": map[string]interface{}{
			"user":       u,
			"nextStep":   login.NextStepSetup,
			"setupToken": setupToken,
		},
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the next 2FA step with 202 Accepted.
// A full session token is never returned here.
// (POST /login)
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	outcome, err := h.loginService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, login.ErrMissingCredentials):
			fail(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, login.ErrInvalidCredentials):
			fail(w, r, http.StatusUnauthorized, err.Error())
		case errors.Is(err, notification.ErrDeliveryFailed):
			fail(w, r, http.StatusInternalServerError, "Failed to send verification code")
		default:
			slog.Error("Signin error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Error signing in")
		}
		return
	}

	data := map[string]interface{}{"userId": outcome.UserID}
	if outcome.SetupToken != "" {
		data["setupToken"] = outcome.SetupToken
	}
	if outcome.Method != "" {
		data["method"] = outcome.Method
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"success":  true,
		"message":  outcome.Message,
		"nextStep": outcome.NextStep,
		"data":     data,
	})
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
