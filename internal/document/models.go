package document

import "time"

// Defaults applied to a document originated by a first join, before anyone
// has typed or renamed it.
const (
	DefaultTitle   = "Untitled Document"
	DefaultContent = "Begin typing..."
)

// Document is the durable (title, content) pair identified by a room code.
type Document struct {
	ID        string    `json:"id" bson:"id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// New returns a draft document with default title and placeholder content.
func New(id string) *Document {
	return &Document{ID: id, Title: DefaultTitle, Content: DefaultContent}
}
