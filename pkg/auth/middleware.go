package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/spendwise/spendwise/pkg/user"
)

type contextKey string

// UserCtxKey holds the authenticated user in the request context.
const UserCtxKey contextKey = "auth_user"

// Middleware verifies bearer tokens on protected routes and resolves the
// authenticated user.
type Middleware struct {
	tokenAuth   *jwtauth.JWTAuth
	userService *user.UserService
}

// NewMiddleware creates auth middleware sharing the process-wide signing
// secret with the token service.
func NewMiddleware(secret string, userService *user.UserService) *Middleware {
	return &Middleware{
		tokenAuth:   jwtauth.New("HS256", []byte(secret), nil),
		userService: userService,
	}
}

// Verifier extracts and verifies the token from the Authorization header.
func (m *Middleware) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(m.tokenAuth)
}

// Authenticator rejects requests without a valid session token, resolves the
// user from the token's user_id claim and stores it in the request context.
// Setup tokens are not session tokens and are rejected here.
func (m *Middleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			unauthorized(w, r, authErrorMessage(err))
			return
		}
		if tok == nil {
			unauthorized(w, r, "No token provided")
			return
		}

		if setup, _ := claims["setup"].(bool); setup {
			unauthorized(w, r, "Invalid token")
			return
		}

		userIDStr, _ := claims["user_id"].(string)
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			unauthorized(w, r, "Invalid token")
			return
		}

		u, err := m.userService.FindByID(r.Context(), userID)
		if err != nil {
			unauthorized(w, r, "user not found")
			return
		}

		ctx := context.WithValue(r.Context(), UserCtxKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSetupToken admits only short-lived setup tokens, used solely for the
// 2FA enrollment step.
func (m *Middleware) RequireSetupToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			unauthorized(w, r, authErrorMessage(err))
			return
		}
		if tok == nil {
			unauthorized(w, r, "No token provided")
			return
		}

		if setup, _ := claims["setup"].(bool); !setup {
			unauthorized(w, r, "Setup token required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits only authenticated users with the admin role. Must be
// mounted after Authenticator.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok || u.Role != user.RoleAdmin {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]interface{}{
				"success": false,
				"message": "Access denied.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user stored by Authenticator.
func CurrentUser(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(UserCtxKey).(user.User)
	return u, ok
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwtauth.ErrExpired):
		return "Token has expired"
	case errors.Is(err, jwtauth.ErrNoTokenFound):
		return "No authorization header provided"
	default:
		return "Invalid token"
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
