package finance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemFinanceRepository implements FinanceRepository with in-memory maps.
// Intended for tests and local development.
type InMemFinanceRepository struct {
	mu           sync.RWMutex
	categories   map[uuid.UUID]Category
	transactions map[uuid.UUID]Transaction
}

// NewInMemFinanceRepository creates a new in-memory finance repository
func NewInMemFinanceRepository() *InMemFinanceRepository {
	return &InMemFinanceRepository{
		categories:   make(map[uuid.UUID]Category),
		transactions: make(map[uuid.UUID]Transaction),
	}
}

func (r *InMemFinanceRepository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.categories[c.ID] = c
	return c, nil
}

func (r *InMemFinanceRepository) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (r *InMemFinanceRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var categories []Category
	for _, c := range r.categories {
		if c.UserID == nil || *c.UserID == userID {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].CreatedAt.Before(categories[j].CreatedAt)
	})
	return categories, nil
}

func (r *InMemFinanceRepository) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	c.Active = active
	r.categories[id] = c
	return c, nil
}

func (r *InMemFinanceRepository) CreateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	if t.Date.IsZero() {
		t.Date = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	r.transactions[t.ID] = t
	return t, nil
}

func (r *InMemFinanceRepository) GetTransaction(ctx context.Context, userID, id uuid.UUID) (Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transactions[id]
	if !ok || t.UserID != userID {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, nil
}

func (r *InMemFinanceRepository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var transactions []Transaction
	for _, t := range r.transactions {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && t.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !t.Date.Before(*filter.To) {
			continue
		}
		if filter.CategoryID != nil && t.CategoryID != *filter.CategoryID {
			continue
		}
		transactions = append(transactions, t)
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
	return transactions, nil
}

func (r *InMemFinanceRepository) UpdateTransaction(ctx context.Context, params UpdateTransactionParams) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transactions[params.ID]
	if !ok || t.UserID != params.UserID {
		return Transaction{}, ErrTransactionNotFound
	}

	if params.CategoryID != nil {
		t.CategoryID = *params.CategoryID
	}
	if params.Type != nil {
		t.Type = *params.Type
	}
	if params.Amount != nil {
		t.Amount = *params.Amount
	}
	if params.Description != nil {
		t.Description = *params.Description
	}
	if params.Date != nil {
		t.Date = *params.Date
	}

	r.transactions[params.ID] = t
	return t, nil
}

func (r *InMemFinanceRepository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transactions[id]
	if !ok || t.UserID != userID {
		return ErrTransactionNotFound
	}
	delete(r.transactions, id)
	return nil
}
