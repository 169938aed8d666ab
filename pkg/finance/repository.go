package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionFilter narrows a transaction listing. From/To bound the date
// (half-open interval); nil CategoryID means all categories.
type TransactionFilter struct {
	UserID     uuid.UUID
	From       *time.Time
	To         *time.Time
	CategoryID *uuid.UUID
}

// UpdateTransactionParams represents a partial update. Nil fields are left
// unchanged.
type UpdateTransactionParams struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  *uuid.UUID
	Type        *TransactionType
	Amount      *float64
	Description *string
	Date        *time.Time
}

// FinanceRepository defines persistence for categories and transactions.
// Lookups scoped by user id return ErrTransactionNotFound/ErrCategoryNotFound
// on a miss.
type FinanceRepository interface {
	CreateCategory(ctx context.Context, c Category) (Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (Category, error)
	// ListCategories returns global categories plus the user's own.
	ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error)
	SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) (Category, error)

	CreateTransaction(ctx context.Context, t Transaction) (Transaction, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (Transaction, error)
	// ListTransactions returns matching transactions sorted by date descending.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, params UpdateTransactionParams) (Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
}
