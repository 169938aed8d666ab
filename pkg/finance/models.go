package finance

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "Income"
	TypeExpense TransactionType = "Expense"
)

// Valid reports whether the type is Income or Expense.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category groups transactions. A nil UserID marks a global category created
// by an admin, usable by everyone; otherwise the category belongs to its
// owner only.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// UsableBy reports whether the given user may attach transactions to this
// category.
func (c Category) UsableBy(userID uuid.UUID) bool {
	return c.UserID == nil || *c.UserID == userID
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CategoryTotal is a per-category line of a monthly summary.
type CategoryTotal struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Income     float64   `json:"income"`
	Expense    float64   `json:"expense"`
}

// MonthlySummary aggregates a user's transactions for one calendar month.
type MonthlySummary struct {
	Month      string          `json:"month"`
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Balance    float64         `json:"balance"`
	ByCategory []CategoryTotal `json:"by_category"`
}
