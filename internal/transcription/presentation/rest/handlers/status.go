package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root is the liveness banner
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Meeting Plunger API",
		"status":  "running",
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
