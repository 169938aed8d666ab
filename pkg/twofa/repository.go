package twofa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UpsertParams represents parameters for replacing a user's 2FA enrollment
type UpsertParams struct {
	UserID     uuid.UUID
	Method     Method
	SecretKey  string
	Verified   bool
	FirstLogin bool
}

// UpdateParams represents a partial update of an existing record. Nil fields
// are left unchanged.
type UpdateParams struct {
	UserID     uuid.UUID
	SecretKey  *string
	Verified   *bool
	FirstLogin *bool
	LastUsed   *time.Time
}

// TwoFARepository defines the persistence interface for 2FA records, keyed
// uniquely by user id. Implementations return ErrRecordNotFound when a lookup
// misses. Upsert must be an atomic replace-or-insert so that re-running setup
// cannot lose a concurrent write.
type TwoFARepository interface {
	Get(ctx context.Context, userID uuid.UUID) (Record, error)
	Upsert(ctx context.Context, params UpsertParams) error
	Update(ctx context.Context, params UpdateParams) error
	Delete(ctx context.Context, userID uuid.UUID) (int64, error)
}
