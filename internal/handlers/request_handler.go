package handlers

import (
	"net/http"

	"depot-helpdesk/internal/filter"
	"depot-helpdesk/internal/models"

	"github.com/gin-gonic/gin"
)

// RequestView is a request as the table shows it.
type RequestView struct {
	Index   int            `json:"index"`
	Overdue bool           `json:"overdue"`
	Request models.Request `json:"request"`
}

// criteria reads the search/status/type query parameters shared by the
// list and export endpoints.
func criteria(c *gin.Context) filter.Criteria {
	return filter.Criteria{
		Search: c.Query("search"),
		Status: c.DefaultQuery("status", filter.All),
		Type:   c.DefaultQuery("type", filter.All),
	}
}

// --- GET: /api/requests ---
func (h *Handler) ListRequests(c *gin.Context) {
	today := h.now()
	entries := filter.FilterAndSort(h.Repo.List(), criteria(c))

	views := make([]RequestView, len(entries))
	for i, e := range entries {
		views[i] = RequestView{Index: e.Index, Overdue: filter.IsOverdue(e.Request, today), Request: e.Request}
	}
	c.JSON(http.StatusOK, gin.H{"requests": views, "total": h.Repo.Len()})
}

// --- GET: /api/requests/:index ---
func (h *Handler) GetRequest(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	req, err := h.Repo.Get(index)
	if err != nil {
		respondError(c, err)
		return
	}
	comments, err := h.Repo.Comments(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"index":    index,
		"overdue":  filter.IsOverdue(req, h.now()),
		"request":  req,
		"comments": comments,
	})
}

// --- POST: /api/requests ---
func (h *Handler) AddRequest(c *gin.Context) {
	var draft models.RequestDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	index, err := h.Repo.Add(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	req, _ := h.Repo.Get(index)
	c.JSON(http.StatusCreated, RequestView{Index: index, Overdue: filter.IsOverdue(req, h.now()), Request: req})
}

// --- PATCH: /api/requests/:index ---
// Only the keys present in the body are changed.
func (h *Handler) UpdateRequest(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var patch models.RequestPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := h.Repo.Update(c.Request.Context(), index, patch); err != nil {
		respondError(c, err)
		return
	}
	req, err := h.Repo.Get(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RequestView{Index: index, Overdue: filter.IsOverdue(req, h.now()), Request: req})
}

// --- DELETE: /api/requests/:index ---
// Later indices shift down by one; clients must refresh their list.
func (h *Handler) DeleteRequest(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	if err := h.Repo.Delete(c.Request.Context(), index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted successfully", "total": h.Repo.Len()})
}
