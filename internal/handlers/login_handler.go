package handlers

import (
	"net/http"

	"depot-helpdesk/internal/auth"
	"depot-helpdesk/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Staff string `json:"staff" binding:"required"`
	Pin   string `json:"pin" binding:"required"`
}

// --- POST: /login ---
// Staff sign in with their name and the shared PIN.
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if !models.IsEncargado(input.Staff) || h.Config.StaffPinHash == "" ||
		!auth.CheckPin(h.Config.StaffPinHash, input.Pin) {
		log.Warn().Str("staff", input.Staff).Msg("Rejected login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(input.Staff, []byte(h.Config.JWTSecret), h.Config.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"staff": input.Staff,
	})
}
