package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Sample handles GET /api/sample/
func Sample(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"message": "Listings API is working"})
}
