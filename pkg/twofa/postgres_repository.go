package twofa

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTwoFARepository implements TwoFARepository using PostgreSQL
type PostgresTwoFARepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTwoFARepository creates a new PostgreSQL-based 2FA repository
func NewPostgresTwoFARepository(pool *pgxpool.Pool) *PostgresTwoFARepository {
	return &PostgresTwoFARepository{
		pool: pool,
	}
}

func (r *PostgresTwoFARepository) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, method, secret_key, verified, first_login, last_used, created_at
		FROM twofa_records WHERE user_id = $1`, userID).
		Scan(&rec.UserID, &rec.Method, &rec.SecretKey, &rec.Verified, &rec.FirstLogin, &rec.LastUsed, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("failed to get 2FA record: %w", err)
	}
	return rec, nil
}

// Upsert replaces any prior enrollment in a single statement, so concurrent
// setups for the same user resolve as last-writer-wins.
func (r *PostgresTwoFARepository) Upsert(ctx context.Context, params UpsertParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO twofa_records (user_id, method, secret_key, verified, first_login, last_used, created_at)
		VALUES ($1, $2, $3, $4, $5, NULL, now())
		ON CONFLICT (user_id) DO UPDATE
		SET method = EXCLUDED.method,
		    secret_key = EXCLUDED.secret_key,
		    verified = EXCLUDED.verified,
		    first_login = EXCLUDED.first_login,
		    last_used = NULL,
		    created_at = now()`,
		params.UserID, params.Method, params.SecretKey, params.Verified, params.FirstLogin)
	if err != nil {
		return fmt.Errorf("failed to upsert 2FA record: %w", err)
	}
	return nil
}

func (r *PostgresTwoFARepository) Update(ctx context.Context, params UpdateParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE twofa_records
		SET secret_key = COALESCE($2, secret_key),
		    verified = COALESCE($3, verified),
		    first_login = COALESCE($4, first_login),
		    last_used = COALESCE($5, last_used)
		WHERE user_id = $1`,
		params.UserID, params.SecretKey, params.Verified, params.FirstLogin, params.LastUsed)
	if err != nil {
		return fmt.Errorf("failed to update 2FA record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresTwoFARepository) Delete(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM twofa_records WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete 2FA record: %w", err)
	}
	return tag.RowsAffected(), nil
}
