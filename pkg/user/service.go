package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// UserService handles registration, lookup and administrative user updates.
type UserService struct {
	repo UserRepository
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterParams represents parameters for registering a new user
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Register creates a new user with a hashed password. The role defaults to
// "user" when not provided. No session token is issued here; the user must
// pass through 2FA setup first.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (User, error) {
	if params.Name == "" || params.Email == "" || params.Password == "" {
		return User{}, ErrMissingFields
	}

	role := params.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return User{}, ErrInvalidRole
	}

	hashedPassword, err := HashPassword(params.Password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, User{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hashedPassword,
		Role:         role,
		Status:       StatusActive,
	})
	if err != nil {
		return User{}, err
	}

	slog.Info("User registered", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// FindByEmail resolves a user by email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// FindByID resolves a user by id.
func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// ComparePassword checks the plaintext password against the user's stored
// hash.
func (s *UserService) ComparePassword(u User, password string) bool {
	ok, err := CheckPasswordHash(password, u.PasswordHash)
	if err != nil {
		slog.Error("Failed to compare password", "user_id", u.ID, "err", err)
		return false
	}
	return ok
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ListNonAdmins returns all users with the plain user role.
func (s *UserService) ListNonAdmins(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RoleUser)
}

// UpdateStatus activates or deactivates a user account.
func (s *UserService) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (User, error) {
	if !status.Valid() {
		return User{}, ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, UpdateStatusParams{ID: id, Status: status})
	if err != nil {
		return User{}, err
	}

	slog.Info("User status updated", "user_id", id, "status", status)
	return updated, nil
}
