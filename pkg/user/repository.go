package user

import (
	"context"

	"github.com/google/uuid"
)

// UpdateStatusParams represents parameters for updating a user's status
type UpdateStatusParams struct {
	ID     uuid.UUID
	Status Status
}

// UserRepository defines the persistence interface for users.
// Implementations return ErrUserNotFound when a lookup misses.
type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (User, error)
}
