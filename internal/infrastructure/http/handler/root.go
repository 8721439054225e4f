package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Root answers the bare domain with service identity, mostly for humans
// poking at the API.
func Root(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   "Retoucher Irving Backend API",
			"version":   version,
			"status":    "running",
			"timestamp": time.Now().UTC(),
		})
	}
}

// NotFound keeps unmatched routes on the JSON contract.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	}
}
