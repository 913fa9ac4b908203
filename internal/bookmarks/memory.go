package bookmarks

import (
	"context"
	"sync"
)

// MemoryRepository keeps the bookmark relation in memory for development and
// tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	pairs map[Bookmark]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{pairs: make(map[Bookmark]struct{})}
}

func (r *MemoryRepository) Upsert(ctx context.Context, accountName, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs[Bookmark{AccountName: accountName, DocumentID: documentID}] = struct{}{}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, accountName, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pairs, Bookmark{AccountName: accountName, DocumentID: documentID})
	return nil
}

func (r *MemoryRepository) ListByAccount(ctx context.Context, accountName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{}
	for p := range r.pairs {
		if p.AccountName == accountName {
			out = append(out, p.DocumentID)
		}
	}
	return out, nil
}

func (r *MemoryRepository) AccountsForDocument(ctx context.Context, documentID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{}
	for p := range r.pairs {
		if p.DocumentID == documentID {
			out = append(out, p.AccountName)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CountForDocument(ctx context.Context, documentID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for p := range r.pairs {
		if p.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}
