package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUser handles GET /api/user by proxying the session lookup.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.client.CurrentUser(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /api/logout.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.client.Logout(c.Request.Context()); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
