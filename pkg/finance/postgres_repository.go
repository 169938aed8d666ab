package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFinanceRepository implements FinanceRepository using PostgreSQL
type PostgresFinanceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFinanceRepository creates a new PostgreSQL-based finance repository
func NewPostgresFinanceRepository(pool *pgxpool.Pool) *PostgresFinanceRepository {
	return &PostgresFinanceRepository{
		pool: pool,
	}
}

const categoryColumns = `id, name, user_id, active, created_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.UserID, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, fmt.Errorf("failed to scan category: %w", err)
	}
	return c, nil
}

func (r *PostgresFinanceRepository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, user_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.ID, c.Name, c.UserID, c.Active)
	return scanCategory(row)
}

func (r *PostgresFinanceRepository) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

func (r *PostgresFinanceRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE user_id IS NULL OR user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresFinanceRepository) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories SET active = $2 WHERE id = $1
		RETURNING `+categoryColumns, id, active)
	return scanCategory(row)
}

const transactionColumns = `id, user_id, category_id, type, amount, description, date, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Type, &t.Amount, &t.Description, &t.Date, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return t, nil
}

func (r *PostgresFinanceRepository) CreateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, category_id, type, amount, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		RETURNING `+transactionColumns,
		t.ID, t.UserID, t.CategoryID, t.Type, t.Amount, t.Description, nullableTime(t.Date))
	return scanTransaction(row)
}

func (r *PostgresFinanceRepository) GetTransaction(ctx context.Context, userID, id uuid.UUID) (Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE id = $1 AND user_id = $2`, id, userID)
	return scanTransaction(row)
}

func (r *PostgresFinanceRepository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	args := []interface{}{filter.UserID}

	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&query, " AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&query, " AND date < $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		fmt.Fprintf(&query, " AND category_id = $%d", len(args))
	}
	query.WriteString(" ORDER BY date DESC")

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *PostgresFinanceRepository) UpdateTransaction(ctx context.Context, params UpdateTransactionParams) (Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET category_id = COALESCE($3, category_id),
		    type = COALESCE($4, type),
		    amount = COALESCE($5, amount),
		    description = COALESCE($6, description),
		    date = COALESCE($7, date)
		WHERE id = $1 AND user_id = $2
		RETURNING `+transactionColumns,
		params.ID, params.UserID, params.CategoryID, params.Type, params.Amount, params.Description, params.Date)
	return scanTransaction(row)
}

func (r *PostgresFinanceRepository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
