package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/spendwise/spendwise/pkg/auth"
	"github.com/spendwise/spendwise/pkg/user"
)

type Handle struct {
	userService *user.UserService
}

// NewHandle creates a new Handle
func NewHandle(userService *user.UserService) *Handle {
	return &Handle{
		userService: userService,
	}
}

// Routes returns a http.Handler for the user administration API. All routes
// require a session token; listing and status changes require the admin role.
func Routes(h *Handle, mw *auth.Middleware) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Verifier(), mw.Authenticator)

	r.Get("/{id}", h.GetUser)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAdmin)
		r.Get("/", h.ListUsers)
		r.Post("/get-non-admin-users", h.ListNonAdmins)
		r.Patch("/{id}/status", h.UpdateStatus)
	})

	return r
}

// GetUser returns a user's public profile.
// (GET /{id})
func (h *Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.userService.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			fail(w, r, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("Get user error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": u})
}

// ListUsers returns all users.
// (GET /)
func (h *Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		slog.Error("List users error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": users})
}

// ListNonAdmins returns all users with the plain user role.
// (POST /get-non-admin-users)
func (h *Handle) ListNonAdmins(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListNonAdmins(r.Context())
	if err != nil {
		slog.Error("List non-admin users error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": users})
}

type UpdateStatusRequest struct {
	Status user.Status `json:"status"`
}

// UpdateStatus activates or deactivates a user account.
// (PATCH /{id}/status)
func (h *Handle) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateStatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	u, err := h.userService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidStatus):
			fail(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrUserNotFound):
			fail(w, r, http.StatusNotFound, "user not found")
		default:
			slog.Error("Update user status error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Failed to update user status")
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": u})
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
