package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/padloom/padloom/internal/document"
)

func TestMemoryRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRepo()

	_, err := m.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Upsert(ctx, &document.Document{ID: "d1", Title: "First", Content: "hello"}))
	got, err := m.Get(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, "First", got.Title)
	require.False(t, got.CreatedAt.IsZero())

	// upsert over an existing id replaces title and content
	require.NoError(t, m.Upsert(ctx, &document.Document{ID: "d1", Title: "Second", Content: "bye"}))
	got, err = m.Get(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, "Second", got.Title)
	require.Equal(t, "bye", got.Content)

	ids, err := m.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"d1"}, ids)

	require.NoError(t, m.Delete(ctx, "d1"))
	require.ErrorIs(t, m.Delete(ctx, "d1"), ErrNotFound)
}

func TestMemoryRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRepo()
	require.NoError(t, m.Upsert(ctx, &document.Document{ID: "d1", Title: "orig"}))

	got, err := m.Get(ctx, "d1")
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := m.Get(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, "orig", again.Title)
}
