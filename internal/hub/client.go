package hub

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/padloom/padloom/internal/protocol"
)

// Client is one live connection as seen by the hub. The account binding and
// joined-room set are owned by the dispatch loop and must not be touched from
// other goroutines; the outbox channel is the only cross-goroutine surface.
type Client struct {
	ID string

	account string
	rooms   map[string]bool

	send chan protocol.ServerFrame
}

// NewClient creates a client with the given connection id and outbox buffer.
func NewClient(id string, buffer int) *Client {
	return &Client{
		ID:    id,
		rooms: make(map[string]bool),
		send:  make(chan protocol.ServerFrame, buffer),
	}
}

// Outbox returns the channel of frames to deliver to the connection. It is
// closed by the hub when the client disconnects.
func (c *Client) Outbox() <-chan protocol.ServerFrame {
	return c.send
}

// NewConnID returns a random connection identifier.
func NewConnID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "conn-unknown"
	}
	return hex.EncodeToString(b)
}

// newRoomCode returns a short shareable room code.
func newRoomCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "room-unknown"
	}
	return hex.EncodeToString(b)
}
