package hub

import (
	"github.com/padloom/padloom/internal/document"
	"github.com/padloom/padloom/internal/protocol"
)

// Presence is the ephemeral display identity of one connection inside a room.
// Never persisted.
type Presence struct {
	ConnID      string
	Pseudonym   string
	AccountName string
}

// Room is the in-memory aggregate for one document: the canonical
// title/content snapshot plus the presence map. All mutation happens on the
// hub dispatch loop, so the struct carries no lock.
type Room struct {
	ID      string
	Title   string
	Content string

	presences map[string]*Presence
}

func newRoom(id, title, content string) *Room {
	return &Room{
		ID:        id,
		Title:     title,
		Content:   content,
		presences: make(map[string]*Presence),
	}
}

func (r *Room) join(connID, pseudonym, accountName string) {
	if pseudonym == "" {
		pseudonym = "Anonymous"
	}
	r.presences[connID] = &Presence{ConnID: connID, Pseudonym: pseudonym, AccountName: accountName}
}

func (r *Room) leave(connID string) {
	delete(r.presences, connID)
}

func (r *Room) empty() bool {
	return len(r.presences) == 0
}

// userList derives the participant list broadcast on membership or name
// changes. The receiving connection is included; clients filter themselves.
func (r *Room) userList() []protocol.UserListEntry {
	out := make([]protocol.UserListEntry, 0, len(r.presences))
	for _, p := range r.presences {
		out = append(out, protocol.UserListEntry{
			ConnID:      p.ConnID,
			Pseudonym:   p.Pseudonym,
			AccountName: p.AccountName,
		})
	}
	return out
}

// snapshot copies the canonical state for a durable write.
func (r *Room) snapshot() *document.Document {
	return &document.Document{ID: r.ID, Title: r.Title, Content: r.Content}
}
