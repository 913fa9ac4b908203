package protocol

import "encoding/json"

// Event names accepted from clients over the websocket.
const (
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventEditDocument   = "edit-document"
	EventCursorMove     = "cursor-move"
	EventSetPseudonym   = "set-pseudonym"
	EventSignUp         = "sign-up"
	EventLogIn          = "log-in"
	EventSaveDocument   = "save-document"
	EventDeleteDocument = "delete-document"
	EventNewRoomCode    = "get-new-room-code"
)

// Event names pushed to clients.
const (
	EventAck              = "ack"
	EventReceiveUpdate    = "receive-update-document"
	EventUpdateUserList   = "update-user-list"
	EventCursorUpdate     = "cursor-update"
	EventRemoveCursor     = "remove-cursor"
	EventLoadSavedDocs    = "load-saved-documents"
	EventSavedTitleUpdate = "saved-document-title-updated"
)

// ClientFrame is a single inbound message. ID, when set, correlates the ack
// frame the client expects in return.
type ClientFrame struct {
	Event   string          `json:"event"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerFrame is a single outbound message, either an ack (ID set) or a push.
type ServerFrame struct {
	Event   string `json:"event"`
	ID      string `json:"id,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Ack builds an ack frame answering the request with the given correlation id.
func Ack(id string, payload any) ServerFrame {
	return ServerFrame{Event: EventAck, ID: id, Payload: payload}
}

// Push builds a server-initiated frame.
func Push(event string, payload any) ServerFrame {
	return ServerFrame{Event: event, Payload: payload}
}

type JoinRequest struct {
	RoomID      string `json:"roomId"`
	Pseudonym   string `json:"pseudonym"`
	AccountName string `json:"accountName,omitempty"`
	// FirstRoom marks a join that is allowed to originate a brand-new room.
	// Joins without it fail when the room id is unknown.
	FirstRoom bool `json:"firstRoom"`
}

type JoinResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId,omitempty"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content,omitempty"`
	Message    string `json:"message,omitempty"`
}

type LeaveRequest struct {
	RoomID string `json:"roomId"`
}

type EditRequest struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// DocumentUpdate is the receive-update-document payload.
type DocumentUpdate struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// CursorPosition locates a caret structurally: the index of the text node
// among the document's child nodes plus offsets within it.
type CursorPosition struct {
	NodeIndex int    `json:"nodeIndex"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Color     string `json:"color,omitempty"`
}

type CursorMoveRequest struct {
	RoomID   string         `json:"roomId"`
	Position CursorPosition `json:"position"`
}

type CursorUpdate struct {
	ConnID   string         `json:"connId"`
	RoomID   string         `json:"roomId"`
	Position CursorPosition `json:"position"`
}

type RemoveCursor struct {
	ConnID string `json:"connId"`
}

type PseudonymRequest struct {
	RoomID    string `json:"roomId"`
	Pseudonym string `json:"pseudonym"`
}

// UserListEntry is one participant in an update-user-list payload. The list
// includes the receiving connection; clients filter themselves out.
type UserListEntry struct {
	ConnID      string `json:"connId"`
	Pseudonym   string `json:"pseudonym"`
	AccountName string `json:"accountName,omitempty"`
}

type AuthRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

type AuthResponse struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message,omitempty"`
	Token          string          `json:"token,omitempty"`
	SavedDocuments []SavedDocument `json:"savedDocuments,omitempty"`
}

// SavedDocument is a bookmarked document reference (id + title only).
type SavedDocument struct {
	DocID string `json:"docId"`
	Title string `json:"title"`
}

type SaveRequest struct {
	AccountName string `json:"accountName"`
	DocumentID  string `json:"documentId"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

type DeleteRequest struct {
	DocumentID string `json:"documentId"`
}

type TitleUpdate struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
}

type RoomCodeResponse struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
}

// AckResult is the generic {success, message} ack payload.
type AckResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
