package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/spendwise/spendwise/pkg/auth"
	"github.com/spendwise/spendwise/pkg/notification"
	"github.com/spendwise/spendwise/pkg/twofa"
	"github.com/spendwise/spendwise/pkg/user"
)

type Handle struct {
	twoFaService twofa.TwoFactorService
}

// NewHandle creates a new Handle
func NewHandle(twoFaService twofa.TwoFactorService) *Handle {
	return &Handle{
		twoFaService: twoFaService,
	}
}

// Routes returns a http.Handler for the 2FA API. Setup requires a setup
// token; the administrative reset requires an admin session token.
func Routes(h *Handle, mw *auth.Middleware) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(mw.Verifier(), mw.RequireSetupToken)
		r.Post("/setup", h.Setup)
	})

	r.Post("/verify", h.Verify)
	r.Post("/resend", h.Resend)

	r.Group(func(r chi.Router) {
		r.Use(mw.Verifier(), mw.Authenticator, mw.RequireAdmin)
		r.Patch("/reset/{userId}", h.AdminReset)
	})

	return r
}

type SetupRequest struct {
	UserID uuid.UUID    `json:"userId"`
	Method twofa.Method `json:"method"`
}

// Setup initiates 2FA enrollment after the user selects a method.
// (POST /setup)
func (h *Handle) Setup(w http.ResponseWriter, r *http.Request) {
	var req SetupRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	result, err := h.twoFaService.Setup(r.Context(), req.UserID, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, twofa.ErrInvalidMethod):
			fail(w, r, http.StatusBadRequest, "Invalid 2FA method.")
		case errors.Is(err, user.ErrUserNotFound):
			fail(w, r, http.StatusNotFound, "User not found.")
		default:
			slog.Error("2FA Setup Error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Failed to initiate 2FA setup.")
		}
		return
	}

	render.JSON(w, r, result)
}

type VerifyRequest struct {
	UserID uuid.UUID `json:"userId"`
	Code   string    `json:"code"`
}

// Verify checks the submitted OTP/TOTP code and, on success, returns the
// session token and user profile.
// (POST /verify)
func (h *Handle) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	result, err := h.twoFaService.Verify(r.Context(), req.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, twofa.ErrNotSetUp):
			fail(w, r, http.StatusBadRequest, "2FA not set up for this user.")
		case errors.Is(err, twofa.ErrInvalidCode):
			fail(w, r, http.StatusUnauthorized, "Invalid 2FA code.")
		default:
			slog.Error("2FA Verification Error", "err", err)
			fail(w, r, http.StatusInternalServerError, "2FA verification failed.")
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"message": "2FA verification successful.",
		"user":    result.User,
		"token":   result.SessionToken,
	})
}

type ResendRequest struct {
	UserID uuid.UUID `json:"userId"`
}

// Resend rotates and re-delivers the OTP for the Email method.
// (POST /resend)
func (h *Handle) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	if err := h.twoFaService.ResendOtp(r.Context(), req.UserID); err != nil {
		switch {
		case errors.Is(err, twofa.ErrNotApplicable):
			fail(w, r, http.StatusBadRequest, "Resend not applicable or method mismatch.")
		case errors.Is(err, notification.ErrDeliveryFailed):
			fail(w, r, http.StatusInternalServerError, "Failed to resend OTP.")
		default:
			slog.Error("Resend OTP Error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Failed to resend OTP.")
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"message": "New OTP sent successfully.",
	})
}

// AdminReset deletes the target user's 2FA record, forcing fresh enrollment
// on their next login.
// (PATCH /reset/{userId})
func (h *Handle) AdminReset(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusForbidden, "Access denied.")
		return
	}

	if err := h.twoFaService.AdminReset(r.Context(), acting, targetID); err != nil {
		switch {
		case errors.Is(err, twofa.ErrForbidden):
			fail(w, r, http.StatusForbidden, "Access denied.")
		case errors.Is(err, twofa.ErrRecordNotFound):
			fail(w, r, http.StatusNotFound, "2FA record not found for user.")
		default:
			slog.Error("Admin Reset Error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Failed to reset 2FA.")
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"message": fmt.Sprintf("2FA successfully reset for user %s.", targetID),
	})
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
