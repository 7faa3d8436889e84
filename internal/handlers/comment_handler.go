package handlers

import (
	"net/http"

	"depot-helpdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

type CommentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// --- GET: /api/requests/:index/comments ---
func (h *Handler) ListComments(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	comments, err := h.Repo.Comments(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// --- POST: /api/requests/:index/comments ---
// With auth on, the signed-in staff member is the author.
func (h *Handler) AddComment(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var input CommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if staff := c.GetString(middleware.StaffKey); staff != "" {
		input.Author = staff
	}

	if err := h.Repo.AddComment(c.Request.Context(), index, input.Author, input.Text); err != nil {
		respondError(c, err)
		return
	}
	comments, err := h.Repo.Comments(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comments": comments})
}
