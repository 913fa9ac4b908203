package repository

import (
	"context"
	"sync"
	"time"

	"github.com/padloom/padloom/internal/document"
)

// MemoryRepo is an in-memory Repository used for development without a
// database and for unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document)}
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) Upsert(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if cur, ok := m.store[doc.ID]; ok {
		cur.Title = doc.Title
		cur.Content = doc.Content
		cur.UpdatedAt = now
		return nil
	}
	cp := *doc
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.store[doc.ID] = &cp
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) ListIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.store))
	for id := range m.store {
		out = append(out, id)
	}
	return out, nil
}
