package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// --- GET: /health ---
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"backend":   h.Config.StoreBackend,
		"requests":  h.Repo.Len(),
		"assistant": h.Assistant != nil,
		"auth":      h.Config.AuthEnabled,
	})
}

// --- POST: /api/reload ---
// Picks up changes other writers made to the store.
func (h *Handler) Reload(c *gin.Context) {
	if err := h.Repo.Reload(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("Reload failed")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reloaded", "total": h.Repo.Len()})
}
