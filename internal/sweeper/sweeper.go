package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/padloom/padloom/internal/bookmarks"
	"github.com/padloom/padloom/internal/document"
	"github.com/padloom/padloom/internal/document/repository"
	"github.com/padloom/padloom/pkg/logger"
	"github.com/padloom/padloom/pkg/metrics"
)

// Occupancy is the sweeper's view of the hub: whether anyone has the room
// open, and eviction of a room left behind by a reclaimed document.
type Occupancy interface {
	RoomOccupied(roomID string) bool
	DropRoomIfEmpty(roomID string)
}

// Archiver stores a final snapshot before a hard delete. Optional.
type Archiver interface {
	Archive(ctx context.Context, doc *document.Document) error
}

// Sweeper periodically deletes documents that nobody bookmarks and nobody
// has open. It is the only mechanism that shrinks storage: leaving a room
// never deletes anything synchronously, so rapid reconnects are cheap.
type Sweeper struct {
	interval time.Duration
	docs     repository.Repository
	marks    bookmarks.Repository
	rooms    Occupancy
	archive  Archiver // nil disables archival
}

func New(interval time.Duration, docs repository.Repository, marks bookmarks.Repository, rooms Occupancy, archive Archiver) *Sweeper {
	return &Sweeper{interval: interval, docs: docs, marks: marks, rooms: rooms, archive: archive}
}

// Run sweeps on a fixed interval until ctx is cancelled. The interval is
// independent of request traffic.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				logger.Errorf("sweep failed: %v", err)
			}
		}
	}
}

// Sweep runs one reclamation pass: every persisted document with zero
// bookmarks and no occupied room is hard-deleted.
func (s *Sweeper) Sweep(ctx context.Context) error {
	ids, err := s.docs.ListIDs(ctx)
	if err != nil {
		return err
	}
	var reclaimed int
	for _, id := range ids {
		n, err := s.marks.CountForDocument(ctx, id)
		if err != nil {
			logger.Errorf("sweep: bookmark count for %s failed: %v", id, err)
			continue
		}
		if n > 0 {
			continue
		}
		if s.rooms.RoomOccupied(id) {
			continue
		}
		if s.archive != nil {
			doc, err := s.docs.Get(ctx, id)
			if err == nil {
				if err := s.archive.Archive(ctx, doc); err != nil {
					logger.Errorf("sweep: archive of %s failed: %v", id, err)
				}
			}
		}
		if err := s.docs.Delete(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.Errorf("sweep: delete of %s failed: %v", id, err)
			}
			continue
		}
		s.rooms.DropRoomIfEmpty(id)
		metrics.DocumentsReclaimed.Inc()
		reclaimed++
	}
	if reclaimed > 0 {
		logger.Infof("sweep reclaimed %d document(s)", reclaimed)
	}
	return nil
}
