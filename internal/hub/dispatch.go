package hub

import (
	"encoding/json"

	"github.com/padloom/padloom/internal/protocol"
	"github.com/padloom/padloom/pkg/logger"
)

// HandleFrame decodes one inbound frame and posts the matching command.
// Payload decoding happens on the caller's (reader) goroutine so malformed
// input never reaches the dispatch loop.
func (h *Hub) HandleFrame(c *Client, f protocol.ClientFrame) {
	switch f.Event {
	case protocol.EventJoinRoom:
		var req protocol.JoinRequest
		if !decode(c, f, &req) {
			return
		}
		h.JoinRoom(c.ID, req, f.ID)
	case protocol.EventLeaveRoom:
		var req protocol.LeaveRequest
		if !decode(c, f, &req) {
			return
		}
		h.LeaveRoom(c.ID, req)
	case protocol.EventEditDocument:
		var req protocol.EditRequest
		if !decode(c, f, &req) {
			return
		}
		h.Edit(c.ID, req)
	case protocol.EventCursorMove:
		var req protocol.CursorMoveRequest
		if !decode(c, f, &req) {
			return
		}
		h.CursorMove(c.ID, req)
	case protocol.EventSetPseudonym:
		var req protocol.PseudonymRequest
		if !decode(c, f, &req) {
			return
		}
		h.SetPseudonym(c.ID, req)
	case protocol.EventSignUp:
		var req protocol.AuthRequest
		if !decode(c, f, &req) {
			return
		}
		h.SignUp(c.ID, req, f.ID)
	case protocol.EventLogIn:
		var req protocol.AuthRequest
		if !decode(c, f, &req) {
			return
		}
		h.LogIn(c.ID, req, f.ID)
	case protocol.EventSaveDocument:
		var req protocol.SaveRequest
		if !decode(c, f, &req) {
			return
		}
		h.SaveDocument(c.ID, req, f.ID)
	case protocol.EventDeleteDocument:
		var req protocol.DeleteRequest
		if !decode(c, f, &req) {
			return
		}
		h.DeleteDocument(c.ID, req, f.ID)
	case protocol.EventNewRoomCode:
		h.NewRoomCode(c.ID, f.ID)
	default:
		logger.Debugf("unknown event %q from %s", f.Event, c.ID)
	}
}

func decode(c *Client, f protocol.ClientFrame, v any) bool {
	if err := json.Unmarshal(f.Payload, v); err != nil {
		logger.Debugf("malformed %s payload from %s: %v", f.Event, c.ID, err)
		return false
	}
	return true
}
