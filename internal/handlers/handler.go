package handlers

import (
	"net/http"
	"strconv"
	"time"

	"depot-helpdesk/internal/ai"
	"depot-helpdesk/internal/config"
	"depot-helpdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Handler serves the API over one repository.
type Handler struct {
	Repo      *repository.Repository
	Config    config.Config
	Assistant *ai.Assistant // nil when no Gemini key is configured
	Now       func() time.Time
}

// New builds a Handler. The assistant is enabled when cfg has a Gemini key.
func New(repo *repository.Repository, cfg config.Config) *Handler {
	h := &Handler{Repo: repo, Config: cfg, Now: time.Now}
	if cfg.GeminiAPIKey != "" {
		h.Assistant = &ai.Assistant{APIKey: cfg.GeminiAPIKey, Repo: repo}
	}
	return h
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// indexParam reads the :index path segment. It writes the 400 itself.
func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request index"})
		return 0, false
	}
	return index, true
}

// respondError maps repository errors to status codes.
func respondError(c *gin.Context, err error) {
	var (
		validation *repository.ValidationError
		notFound   *repository.NotFoundError
		conflict   *repository.ConcurrentModificationError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found. Reload the list and try again."})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": "The request files were changed by someone else. Reload and try again."})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save changes"})
	}
}
