package hub

import (
	"context"
	"errors"
	"time"

	"github.com/padloom/padloom/internal/accounts"
	"github.com/padloom/padloom/internal/bookmarks"
	"github.com/padloom/padloom/internal/document"
	"github.com/padloom/padloom/internal/document/repository"
	"github.com/padloom/padloom/internal/protocol"
	"github.com/padloom/padloom/internal/tokens"
	"github.com/padloom/padloom/pkg/logger"
	"github.com/padloom/padloom/pkg/metrics"
)

const storeTimeout = 10 * time.Second

// Hub owns every room, every live connection and the account-to-connection
// session binding. All of that state is mutated from a single dispatch
// goroutine consuming commands from one channel: each inbound event is fully
// processed (in-memory mutation plus the broadcasts it triggers) before the
// next is dequeued, so the maps need no locks and duplicate logins cannot
// race each other.
//
// Durable writes are deliberately fire-and-forget: the broadcast happens
// immediately and the store catches up. A crash between the two loses the
// newest edit from storage but never from live viewers. Conflict policy for
// content is last-writer-wins by arrival order at the loop; there is no merge.
type Hub struct {
	cmds chan func()

	clients  map[string]*Client // connID -> client
	rooms    map[string]*Room   // roomID -> resident room
	sessions map[string]string  // accountName -> connID, at most one

	docs     repository.Repository
	accounts *accounts.Service
	marks    bookmarks.Repository
	issuer   *tokens.Issuer // optional, nil when JWT_SECRET is unset
}

func New(docs repository.Repository, accountsSvc *accounts.Service, marks bookmarks.Repository, issuer *tokens.Issuer) *Hub {
	return &Hub{
		cmds:     make(chan func(), 256),
		clients:  make(map[string]*Client),
		rooms:    make(map[string]*Room),
		sessions: make(map[string]string),
		docs:     docs,
		accounts: accountsSvc,
		marks:    marks,
		issuer:   issuer,
	}
}

// Run consumes commands until ctx is cancelled. Start exactly once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.cmds:
			cmd()
		}
	}
}

func (h *Hub) do(cmd func()) {
	h.cmds <- cmd
}

// trySend queues a frame without ever blocking the dispatch loop. A full
// outbox means the connection is too slow to keep up; the frame is dropped.
func (h *Hub) trySend(c *Client, f protocol.ServerFrame) {
	select {
	case c.send <- f:
		metrics.BroadcastsSent.Inc()
	default:
		logger.Warnf("dropping %s frame for slow connection %s", f.Event, c.ID)
	}
}

func (h *Hub) sendTo(connID string, f protocol.ServerFrame) {
	if c, ok := h.clients[connID]; ok {
		h.trySend(c, f)
	}
}

// broadcastRoom sends a frame to every member of the room except the
// connection named by except (empty string means everyone).
func (h *Hub) broadcastRoom(r *Room, f protocol.ServerFrame, except string) {
	for connID := range r.presences {
		if connID == except {
			continue
		}
		h.sendTo(connID, f)
	}
}

func (h *Hub) broadcastUserList(r *Room) {
	h.broadcastRoom(r, protocol.Push(protocol.EventUpdateUserList, r.userList()), "")
}

// Connect registers a new live connection.
func (h *Hub) Connect(c *Client) {
	h.do(func() {
		h.clients[c.ID] = c
		metrics.ActiveConnections.Set(float64(len(h.clients)))
	})
}

// Disconnect is the transport-detected cancellation signal: the connection
// leaves every joined room, its session binding is released so the account
// can log in again, and the outbox is closed.
func (h *Hub) Disconnect(connID string) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		for roomID := range c.rooms {
			h.leaveRoom(c, roomID)
		}
		if c.account != "" {
			delete(h.sessions, c.account)
		}
		delete(h.clients, connID)
		metrics.ActiveConnections.Set(float64(len(h.clients)))
		close(c.send)
	})
}

// JoinRoom resolves the room (resident, hydrated from the store, or a fresh
// draft when the join may originate one), adds the presence entry and answers
// with the canonical snapshot. The whole room, joiner included, gets a
// presence broadcast.
func (h *Hub) JoinRoom(connID string, req protocol.JoinRequest, ackID string) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		room, ok := h.rooms[req.RoomID]
		if !ok {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			doc, err := h.docs.Get(ctx, req.RoomID)
			cancel()
			switch {
			case err == nil:
				room = newRoom(doc.ID, doc.Title, doc.Content)
			case errors.Is(err, repository.ErrNotFound):
				if !req.FirstRoom {
					h.trySend(c, protocol.Ack(ackID, protocol.JoinResponse{
						Success: false,
						Message: "failed to join: room not found",
					}))
					return
				}
				draft := document.New(req.RoomID)
				room = newRoom(draft.ID, draft.Title, draft.Content)
				h.persistDocument(draft)
			default:
				logger.Errorf("join %s: document lookup failed: %v", req.RoomID, err)
				h.trySend(c, protocol.Ack(ackID, protocol.JoinResponse{
					Success: false,
					Message: "failed to join",
				}))
				return
			}
			h.rooms[req.RoomID] = room
			metrics.ActiveRooms.Set(float64(len(h.rooms)))
		}

		room.join(connID, req.Pseudonym, req.AccountName)
		c.rooms[room.ID] = true
		h.trySend(c, protocol.Ack(ackID, protocol.JoinResponse{
			Success:    true,
			DocumentID: room.ID,
			Title:      room.Title,
			Content:    room.Content,
		}))
		h.broadcastUserList(room)
	})
}

// LeaveRoom removes the presence entry. The room stays resident even when it
// empties; only the sweeper drops it, which keeps rapid rejoins cheap.
func (h *Hub) LeaveRoom(connID string, req protocol.LeaveRequest) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		h.leaveRoom(c, req.RoomID)
	})
}

// leaveRoom runs on the dispatch loop.
func (h *Hub) leaveRoom(c *Client, roomID string) {
	room, ok := h.rooms[roomID]
	if !ok || !c.rooms[roomID] {
		return
	}
	room.leave(c.ID)
	delete(c.rooms, roomID)
	h.broadcastUserList(room)
	h.broadcastRoom(room, protocol.Push(protocol.EventRemoveCursor, protocol.RemoveCursor{ConnID: c.ID}), "")
}

// Edit overwrites the canonical snapshot unconditionally (last writer wins,
// no merge, no version check), broadcasts the new state to every other member
// and schedules the durable write. A title change additionally notifies every
// account bookmarking the document, member or not.
func (h *Hub) Edit(connID string, req protocol.EditRequest) {
	h.do(func() {
		room, ok := h.rooms[req.DocumentID]
		if !ok {
			// The room was evicted, so no connection can be watching it.
			logger.Warnf("edit for missing room %s dropped", req.DocumentID)
			return
		}
		if _, member := room.presences[connID]; !member {
			return
		}
		titleChanged := req.Title != room.Title
		room.Title = req.Title
		room.Content = req.Content
		metrics.EditsApplied.Inc()

		h.broadcastRoom(room, protocol.Push(protocol.EventReceiveUpdate, protocol.DocumentUpdate{
			DocumentID: room.ID,
			Title:      room.Title,
			Content:    room.Content,
		}), connID)
		h.persistDocument(room.snapshot())

		if titleChanged {
			h.notifyBookmarkers(room.ID, room.Title)
		}
	})
}

// notifyBookmarkers pushes a title update to the live connection of every
// account that bookmarked the document.
func (h *Hub) notifyBookmarkers(docID, title string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	holders, err := h.marks.AccountsForDocument(ctx, docID)
	cancel()
	if err != nil {
		logger.Errorf("bookmark holders lookup for %s failed: %v", docID, err)
		return
	}
	for _, account := range holders {
		if connID, ok := h.sessions[account]; ok {
			h.sendTo(connID, protocol.Push(protocol.EventSavedTitleUpdate, protocol.TitleUpdate{
				DocumentID: docID,
				Title:      title,
			}))
		}
	}
}

// CursorMove relays an ephemeral caret position to the other members.
// Nothing is stored.
func (h *Hub) CursorMove(connID string, req protocol.CursorMoveRequest) {
	h.do(func() {
		room, ok := h.rooms[req.RoomID]
		if !ok {
			return
		}
		if _, member := room.presences[connID]; !member {
			return
		}
		h.broadcastRoom(room, protocol.Push(protocol.EventCursorUpdate, protocol.CursorUpdate{
			ConnID:   connID,
			RoomID:   room.ID,
			Position: req.Position,
		}), connID)
	})
}

// SetPseudonym updates the room-scoped display name and re-broadcasts the
// participant list.
func (h *Hub) SetPseudonym(connID string, req protocol.PseudonymRequest) {
	h.do(func() {
		room, ok := h.rooms[req.RoomID]
		if !ok {
			return
		}
		p, member := room.presences[connID]
		if !member {
			return
		}
		name := req.Pseudonym
		if name == "" {
			name = "Anonymous"
		}
		p.Pseudonym = name
		h.broadcastUserList(room)
	})
}

// SignUp creates an account. The credential hash never leaves the accounts
// service.
func (h *Hub) SignUp(connID string, req protocol.AuthRequest, ackID string) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		_, err := h.accounts.SignUp(ctx, req.Username, req.Secret)
		cancel()
		switch {
		case errors.Is(err, accounts.ErrUsernameTaken):
			h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: false, Message: "username taken"}))
		case err != nil:
			logger.Errorf("sign-up for %q failed: %v", req.Username, err)
			h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: false, Message: "sign up failed"}))
		default:
			h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: true}))
		}
	})
}

// LogIn binds the connection to an account. An account bound to another live
// connection is rejected, not kicked; the second login must wait for the
// first connection to go away.
func (h *Hub) LogIn(connID string, req protocol.AuthRequest, ackID string) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		if _, bound := h.sessions[req.Username]; bound {
			h.trySend(c, protocol.Ack(ackID, protocol.AuthResponse{Success: false, Message: "already logged in"}))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		_, err := h.accounts.Authenticate(ctx, req.Username, req.Secret)
		cancel()
		if err != nil {
			if errors.Is(err, accounts.ErrInvalidCredentials) {
				h.trySend(c, protocol.Ack(ackID, protocol.AuthResponse{Success: false, Message: "invalid credentials"}))
			} else {
				logger.Errorf("log-in for %q failed: %v", req.Username, err)
				h.trySend(c, protocol.Ack(ackID, protocol.AuthResponse{Success: false, Message: "log in failed"}))
			}
			return
		}
		h.sessions[req.Username] = connID
		c.account = req.Username

		resp := protocol.AuthResponse{Success: true, SavedDocuments: h.savedDocuments(req.Username)}
		if h.issuer != nil {
			if tok, err := h.issuer.Issue(req.Username); err == nil {
				resp.Token = tok
			} else {
				logger.Errorf("resume token for %q failed: %v", req.Username, err)
			}
		}
		h.trySend(c, protocol.Ack(ackID, resp))
	})
}

// savedDocuments resolves the account's bookmarks to id+title pairs, reading
// titles from resident rooms first and the store otherwise.
func (h *Hub) savedDocuments(account string) []protocol.SavedDocument {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	ids, err := h.marks.ListByAccount(ctx, account)
	if err != nil {
		logger.Errorf("bookmark list for %q failed: %v", account, err)
		return nil
	}
	out := make([]protocol.SavedDocument, 0, len(ids))
	for _, id := range ids {
		if room, ok := h.rooms[id]; ok {
			out = append(out, protocol.SavedDocument{DocID: id, Title: room.Title})
			continue
		}
		doc, err := h.docs.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, protocol.SavedDocument{DocID: id, Title: doc.Title})
	}
	return out
}

// SaveDocument upserts the durable copy and the bookmark pair for the
// logged-in account. Saving the same pair twice updates content without
// duplicating the bookmark. Unlike edits, a save is synchronous: a store
// failure is surfaced on the ack.
func (h *Hub) SaveDocument(connID string, req protocol.SaveRequest, ackID string) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		if c.account == "" {
			h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: false, Message: "must be logged in to save documents"}))
			return
		}
		title := req.Title
		if title == "" {
			title = document.DefaultTitle
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := h.docs.Upsert(ctx, &document.Document{ID: req.DocumentID, Title: title, Content: req.Content})
		if err == nil {
			err = h.marks.Upsert(ctx, c.account, req.DocumentID)
		}
		if err != nil {
			logger.Errorf("save of %s for %q failed: %v", req.DocumentID, c.account, err)
			h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: false, Message: "save failed"}))
			return
		}
		if room, ok := h.rooms[req.DocumentID]; ok {
			room.Title = title
			room.Content = req.Content
		}
		h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: true}))
		h.sendTo(connID, protocol.Push(protocol.EventLoadSavedDocs, h.savedDocuments(c.account)))
	})
}

// DeleteDocument removes the caller's bookmark. When that was the last
// bookmark and nobody has the room open, the document is hard-deleted right
// away instead of waiting for the sweep.
func (h *Hub) DeleteDocument(connID string, req protocol.DeleteRequest, ackID string) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		if c.account == "" {
			h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: false, Message: "must be logged in to delete documents"}))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := h.marks.Delete(ctx, c.account, req.DocumentID); err != nil {
			logger.Errorf("bookmark delete of %s for %q failed: %v", req.DocumentID, c.account, err)
			h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: false, Message: "delete failed"}))
			return
		}
		remaining, err := h.marks.CountForDocument(ctx, req.DocumentID)
		if err == nil && remaining == 0 {
			if room, resident := h.rooms[req.DocumentID]; !resident || room.empty() {
				if err := h.docs.Delete(ctx, req.DocumentID); err != nil && !errors.Is(err, repository.ErrNotFound) {
					logger.Errorf("document delete of %s failed: %v", req.DocumentID, err)
				}
				if resident {
					delete(h.rooms, req.DocumentID)
					metrics.ActiveRooms.Set(float64(len(h.rooms)))
				}
			}
		}
		h.trySend(c, protocol.Ack(ackID, protocol.AckResult{Success: true}))
	})
}

// NewRoomCode hands out a fresh room code that does not collide with any
// resident room.
func (h *Hub) NewRoomCode(connID string, ackID string) {
	h.do(func() {
		c, ok := h.clients[connID]
		if !ok {
			return
		}
		code := newRoomCode()
		for h.rooms[code] != nil {
			code = newRoomCode()
		}
		h.trySend(c, protocol.Ack(ackID, protocol.RoomCodeResponse{Success: true, RoomID: code}))
	})
}

// RoomOccupied reports whether the room is resident with at least one
// connection. Used by the sweeper to protect open documents.
func (h *Hub) RoomOccupied(roomID string) bool {
	reply := make(chan bool, 1)
	h.do(func() {
		r, ok := h.rooms[roomID]
		reply <- ok && !r.empty()
	})
	return <-reply
}

// DropRoomIfEmpty evicts a lingering empty room after its document was
// reclaimed.
func (h *Hub) DropRoomIfEmpty(roomID string) {
	h.do(func() {
		if r, ok := h.rooms[roomID]; ok && r.empty() {
			delete(h.rooms, roomID)
			metrics.ActiveRooms.Set(float64(len(h.rooms)))
		}
	})
}

// persistDocument schedules the fire-and-forget durable write backing an
// edit or draft creation. Failure is logged and the broadcast stands; edits
// are optimistic.
func (h *Hub) persistDocument(doc *document.Document) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := h.docs.Upsert(ctx, doc); err != nil {
			logger.Errorf("durable write for %s failed: %v", doc.ID, err)
		}
	}()
}
