package bookmarks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Upsert(ctx, "ana", "doc1"))
	require.NoError(t, r.Upsert(ctx, "ana", "doc1"))

	n, err := r.CountForDocument(ctx, "doc1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestListAndHolders(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Upsert(ctx, "ana", "doc1"))
	require.NoError(t, r.Upsert(ctx, "ana", "doc2"))
	require.NoError(t, r.Upsert(ctx, "bob", "doc1"))

	ids, err := r.ListByAccount(ctx, "ana")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"doc1", "doc2"}, ids)

	holders, err := r.AccountsForDocument(ctx, "doc1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ana", "bob"}, holders)
}

func TestDeleteVariants(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Upsert(ctx, "ana", "doc1"))
	require.NoError(t, r.Upsert(ctx, "bob", "doc1"))

	require.NoError(t, r.Delete(ctx, "ana", "doc1"))
	n, _ := r.CountForDocument(ctx, "doc1")
	require.EqualValues(t, 1, n)

	// deleting an absent pair is a no-op
	require.NoError(t, r.Delete(ctx, "ana", "doc1"))

	require.NoError(t, r.Delete(ctx, "bob", "doc1"))
	n, _ = r.CountForDocument(ctx, "doc1")
	require.EqualValues(t, 0, n)
}
