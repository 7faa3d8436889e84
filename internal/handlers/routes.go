package handlers

import (
	"time"

	"depot-helpdesk/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SetupRouter wires every route onto a new engine.
func SetupRouter(h *Handler) *gin.Engine {
	cfg := h.Config

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	if len(cfg.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CorsOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", h.Health)

	api := r.Group("/api")
	if cfg.AuthEnabled {
		r.POST("/login", h.Login)
		api.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
		log.Info().Msg("Staff login is required for /api")
	}
	{
		api.GET("/requests", h.ListRequests)
		api.POST("/requests", h.AddRequest)
		api.GET("/requests/:index", h.GetRequest)
		api.PATCH("/requests/:index", h.UpdateRequest)
		api.DELETE("/requests/:index", h.DeleteRequest)
		api.GET("/requests/:index/comments", h.ListComments)
		api.POST("/requests/:index/comments", h.AddComment)

		api.POST("/reload", h.Reload)
		api.GET("/reports", h.GetReport)
		api.GET("/export.csv", h.ExportCSV)
		api.GET("/export.xlsx", h.ExportXLSX)
		api.POST("/ask", h.AskAI)
	}

	return r
}
