package repository

import (
	"context"
	"errors"

	"github.com/padloom/padloom/internal/document"
)

var ErrNotFound = errors.New("document not found")

// Repository provides durable persistence for documents. Upsert overwrites
// title and content unconditionally (last writer wins at the store as well).
type Repository interface {
	Get(ctx context.Context, id string) (*document.Document, error)
	Upsert(ctx context.Context, doc *document.Document) error
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}
