package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/padloom/padloom/internal/bookmarks"
	"github.com/padloom/padloom/internal/document"
	"github.com/padloom/padloom/internal/document/repository"
)

type stubRooms struct {
	occupied map[string]bool
	dropped  []string
}

func (s *stubRooms) RoomOccupied(roomID string) bool { return s.occupied[roomID] }
func (s *stubRooms) DropRoomIfEmpty(roomID string)   { s.dropped = append(s.dropped, roomID) }

type recordingArchiver struct {
	archived []string
}

func (a *recordingArchiver) Archive(ctx context.Context, doc *document.Document) error {
	a.archived = append(a.archived, doc.ID)
	return nil
}

func TestSweepReclaimsOrphans(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemoryRepo()
	marks := bookmarks.NewMemoryRepository()
	rooms := &stubRooms{occupied: map[string]bool{"open": true}}
	archive := &recordingArchiver{}

	require.NoError(t, docs.Upsert(ctx, &document.Document{ID: "orphan", Title: "a", Content: "x"}))
	require.NoError(t, docs.Upsert(ctx, &document.Document{ID: "open", Title: "b", Content: "y"}))
	require.NoError(t, docs.Upsert(ctx, &document.Document{ID: "kept", Title: "c", Content: "z"}))
	require.NoError(t, marks.Upsert(ctx, "ana", "kept"))

	sw := New(time.Minute, docs, marks, rooms, archive)
	require.NoError(t, sw.Sweep(ctx))

	// only the unbookmarked, unoccupied document goes away
	_, err := docs.Get(ctx, "orphan")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = docs.Get(ctx, "open")
	require.NoError(t, err)
	_, err = docs.Get(ctx, "kept")
	require.NoError(t, err)

	require.Equal(t, []string{"orphan"}, archive.archived)
	require.Equal(t, []string{"orphan"}, rooms.dropped)
}

func TestSweepWithoutArchiver(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemoryRepo()
	marks := bookmarks.NewMemoryRepository()
	rooms := &stubRooms{occupied: map[string]bool{}}

	require.NoError(t, docs.Upsert(ctx, &document.Document{ID: "orphan"}))

	sw := New(time.Minute, docs, marks, rooms, nil)
	require.NoError(t, sw.Sweep(ctx))

	_, err := docs.Get(ctx, "orphan")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSweepIdempotentOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	sw := New(time.Minute, repository.NewMemoryRepo(), bookmarks.NewMemoryRepository(), &stubRooms{occupied: map[string]bool{}}, nil)
	require.NoError(t, sw.Sweep(ctx))
	require.NoError(t, sw.Sweep(ctx))
}
