package finance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spendwise/spendwise/pkg/user"
)

// FinanceService handles per-user transaction and category operations.
type FinanceService struct {
	repo FinanceRepository
}

// NewFinanceService creates a new FinanceService
func NewFinanceService(repo FinanceRepository) *FinanceService {
	return &FinanceService{
		repo: repo,
	}
}

// CreateCategoryParams represents parameters for creating a category
type CreateCategoryParams struct {
	Name   string
	Global bool
}

// CreateCategory creates a category for the acting user. Admins may create
// global categories usable by everyone.
func (s *FinanceService) CreateCategory(ctx context.Context, acting user.User, params CreateCategoryParams) (Category, error) {
	if params.Name == "" {
		return Category{}, fmt.Errorf("please provide a category name")
	}

	c := Category{Name: params.Name, Active: true}
	if params.Global && acting.Role == user.RoleAdmin {
		c.UserID = nil
	} else {
		id := acting.ID
		c.UserID = &id
	}

	created, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		return Category{}, err
	}

	slog.Info("Category created", "category_id", created.ID, "global", created.UserID == nil)
	return created, nil
}

// ListCategories returns global categories plus the user's own.
func (s *FinanceService) ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

// SetCategoryActive toggles a category. Only the owner, or an admin for
// global categories, may do this.
func (s *FinanceService) SetCategoryActive(ctx context.Context, acting user.User, id uuid.UUID, active bool) (Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}

	if c.UserID == nil {
		if acting.Role != user.RoleAdmin {
			return Category{}, ErrCategoryForbidden
		}
	} else if *c.UserID != acting.ID {
		return Category{}, ErrCategoryForbidden
	}

	return s.repo.SetCategoryActive(ctx, id, active)
}

// CreateTransactionParams represents parameters for creating a transaction
type CreateTransactionParams struct {
	CategoryID  uuid.UUID
	Type        TransactionType
	Amount      float64
	Description string
	Date        time.Time
}

// CreateTransaction records an entry for the user. The category must exist
// and be global or owned by the caller.
func (s *FinanceService) CreateTransaction(ctx context.Context, userID uuid.UUID, params CreateTransactionParams) (Transaction, error) {
	if params.CategoryID == uuid.Nil || params.Type == "" || params.Amount == 0 {
		return Transaction{}, ErrMissingFields
	}
	if !params.Type.Valid() {
		return Transaction{}, ErrInvalidType
	}

	c, err := s.repo.GetCategory(ctx, params.CategoryID)
	if err != nil {
		return Transaction{}, err
	}
	if !c.UsableBy(userID) {
		return Transaction{}, ErrCategoryForbidden
	}

	created, err := s.repo.CreateTransaction(ctx, Transaction{
		UserID:      userID,
		CategoryID:  params.CategoryID,
		Type:        params.Type,
		Amount:      params.Amount,
		Description: params.Description,
		Date:        params.Date,
	})
	if err != nil {
		return Transaction{}, err
	}

	slog.Info("Transaction created", "transaction_id", created.ID, "user_id", userID, "type", created.Type)
	return created, nil
}

// ListTransactionsParams represents the optional listing filters
type ListTransactionsParams struct {
	Month      string // YYYY-MM, optional
	CategoryID *uuid.UUID
}

// ListTransactions returns the user's transactions, newest first, optionally
// narrowed to one calendar month and/or one category.
func (s *FinanceService) ListTransactions(ctx context.Context, userID uuid.UUID, params ListTransactionsParams) ([]Transaction, error) {
	filter := TransactionFilter{UserID: userID, CategoryID: params.CategoryID}

	if params.Month != "" {
		from, to, err := monthRange(params.Month)
		if err != nil {
			return nil, err
		}
		filter.From = &from
		filter.To = &to
	}

	return s.repo.ListTransactions(ctx, filter)
}

// GetTransaction returns one of the user's transactions.
func (s *FinanceService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

// UpdateTransaction applies a partial update to one of the user's
// transactions. A changed category is re-checked for ownership.
func (s *FinanceService) UpdateTransaction(ctx context.Context, userID uuid.UUID, params UpdateTransactionParams) (Transaction, error) {
	params.UserID = userID

	if params.Type != nil && !params.Type.Valid() {
		return Transaction{}, ErrInvalidType
	}

	if params.CategoryID != nil {
		c, err := s.repo.GetCategory(ctx, *params.CategoryID)
		if err != nil {
			return Transaction{}, err
		}
		if !c.UsableBy(userID) {
			return Transaction{}, ErrCategoryForbidden
		}
	}

	return s.repo.UpdateTransaction(ctx, params)
}

// DeleteTransaction removes one of the user's transactions.
func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, userID, id)
}

// MonthlySummary aggregates the user's income, expenses and per-category
// totals for one calendar month.
func (s *FinanceService) MonthlySummary(ctx context.Context, userID uuid.UUID, month string) (MonthlySummary, error) {
	if month == "" {
		return MonthlySummary{}, ErrInvalidMonth
	}
	from, to, err := monthRange(month)
	if err != nil {
		return MonthlySummary{}, err
	}

	transactions, err := s.repo.ListTransactions(ctx, TransactionFilter{
		UserID: userID,
		From:   &from,
		To:     &to,
	})
	if err != nil {
		return MonthlySummary{}, err
	}

	summary := MonthlySummary{Month: month}
	totals := make(map[uuid.UUID]*CategoryTotal)

	for _, t := range transactions {
		ct, ok := totals[t.CategoryID]
		if !ok {
			name := ""
			if c, err := s.repo.GetCategory(ctx, t.CategoryID); err == nil {
				name = c.Name
			}
			ct = &CategoryTotal{CategoryID: t.CategoryID, Name: name}
			totals[t.CategoryID] = ct
		}

		switch t.Type {
		case TypeIncome:
			summary.Income += t.Amount
			ct.Income += t.Amount
		case TypeExpense:
			summary.Expense += t.Amount
			ct.Expense += t.Amount
		}
	}

	for _, ct := range totals {
		summary.ByCategory = append(summary.ByCategory, *ct)
	}
	summary.Balance = summary.Income - summary.Expense

	return summary, nil
}

func monthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	return start, start.AddDate(0, 1, 0), nil
}
