package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/padloom/padloom/internal/bookmarks"
	"github.com/padloom/padloom/internal/document/repository"
	"github.com/padloom/padloom/pkg/middleware"
)

// APIHandler serves the read-only HTTP surface next to the websocket: stale
// document snapshots for reconnecting viewers and the bookmark list for a
// resume token.
type APIHandler struct {
	docs  repository.Repository
	marks bookmarks.Repository
}

func NewAPIHandler(docs repository.Repository, marks bookmarks.Repository) *APIHandler {
	return &APIHandler{docs: docs, marks: marks}
}

// Register mounts the API routes. The /me routes require a Bearer resume
// token; ver may be nil when no JWT secret is configured, which disables them.
func (h *APIHandler) Register(r *gin.Engine, ver middleware.Verifier) {
	api := r.Group("/api/v1")
	api.GET("/documents/:id", h.GetDocument)
	if ver != nil {
		api.GET("/me/documents", middleware.AuthMiddleware(ver), h.ListSavedDocuments)
	}
}

// GetDocument returns the persisted snapshot of a document. It may lag the
// live room by one in-flight write; the websocket is the consistent path.
func (h *APIHandler) GetDocument(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.docs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": doc.ID, "title": doc.Title, "content": doc.Content, "updatedAt": doc.UpdatedAt})
}

// ListSavedDocuments returns the bookmarked documents of the authenticated
// account (id + title).
func (h *APIHandler) ListSavedDocuments(c *gin.Context) {
	claims, _ := c.Get("claims")
	cm, ok := claims.(map[string]interface{})
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
		return
	}
	account, _ := cm["sub"].(string)
	if account == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
		return
	}
	ids, err := h.marks.ListByAccount(c.Request.Context(), account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bookmark lookup failed"})
		return
	}
	out := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		doc, err := h.docs.Get(c.Request.Context(), id)
		if err != nil {
			continue
		}
		out = append(out, gin.H{"docId": doc.ID, "title": doc.Title})
	}
	c.JSON(http.StatusOK, gin.H{"savedDocuments": out})
}
