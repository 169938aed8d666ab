package twofa

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemTwoFARepository implements TwoFARepository with an in-memory map.
// Intended for tests and local development. The mutex serializes concurrent
// setup/resend/reset for the same user; last writer wins.
type InMemTwoFARepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
}

// NewInMemTwoFARepository creates a new in-memory 2FA repository
func NewInMemTwoFARepository() *InMemTwoFARepository {
	return &InMemTwoFARepository{
		records: make(map[uuid.UUID]Record),
	}
}

func (r *InMemTwoFARepository) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (r *InMemTwoFARepository) Upsert(ctx context.Context, params UpsertParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[params.UserID] = Record{
		UserID:     params.UserID,
		Method:     params.Method,
		SecretKey:  params.SecretKey,
		Verified:   params.Verified,
		FirstLogin: params.FirstLogin,
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

func (r *InMemTwoFARepository) Update(ctx context.Context, params UpdateParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[params.UserID]
	if !ok {
		return ErrRecordNotFound
	}

	if params.SecretKey != nil {
		rec.SecretKey = *params.SecretKey
	}
	if params.Verified != nil {
		rec.Verified = *params.Verified
	}
	if params.FirstLogin != nil {
		rec.FirstLogin = *params.FirstLogin
	}
	if params.LastUsed != nil {
		rec.LastUsed = params.LastUsed
	}

	r.records[params.UserID] = rec
	return nil
}

func (r *InMemTwoFARepository) Delete(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[userID]; !ok {
		return 0, nil
	}
	delete(r.records, userID)
	return 1, nil
}
