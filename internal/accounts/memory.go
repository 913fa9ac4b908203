package accounts

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Account)}
}

func (r *MemoryRepository) Create(ctx context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[a.Username]; ok {
		return ErrUsernameTaken
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	r.store[a.Username] = &cp
	return nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.store[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}
