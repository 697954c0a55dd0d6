package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rdmelo/perdesk/internal/dashboard/auth"
)

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// refreshHandler exchanges a valid refresh token for a new access token.
// This is the one transparent recovery the API offers; a failed refresh
// means the session is over.
func refreshHandler(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		access, err := auth.Refresh(req.Refresh, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access": access})
	}
}
