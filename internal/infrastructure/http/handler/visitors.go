package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Osomudeya/retoucher-demo/internal/application"
)

const HeaderAdminKey = "X-Admin-Key"

type VisitorHandler struct {
	service  *application.VisitorService
	adminKey string
}

func NewVisitorHandler(service *application.VisitorService, adminKey string) *VisitorHandler {
	return &VisitorHandler{service: service, adminKey: adminKey}
}

// Get returns the current count. A store failure degrades to a zero count
// with an error field rather than an empty body, so the caller's display
// never shows undefined state.
func (h *VisitorHandler) Get(c *gin.Context) {
	count, err := h.service.Count(c.Request.Context())
	if err != nil {
		slog.Error("failed to fetch visitor count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch visitor count",
			"count": 0,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     count,
		"timestamp": time.Now().UTC(),
	})
}

// Increment bumps the counter. On failure the body carries the best-effort
// count the fallback chain produced.
func (h *VisitorHandler) Increment(c *gin.Context) {
	count, incremented, err := h.service.Increment(c.Request.Context())
	if err != nil {
		slog.Error("failed to increment visitor count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "Failed to increment visitor count",
			"count":       count,
			"incremented": false,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       count,
		"timestamp":   time.Now().UTC(),
		"incremented": incremented,
	})
}

func (h *VisitorHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		slog.Error("failed to fetch visitor stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch visitor statistics",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":           stats.Count,
		"created_at":      stats.CreatedAt,
		"updated_at":      stats.UpdatedAt,
		"active_duration": stats.ActiveDuration,
		"timestamp":       time.Now().UTC(),
	})
}

// Reset zeroes the counter behind the admin shared-secret gate. The compare
// is constant time; a mismatch leaves the stored value untouched.
func (h *VisitorHandler) Reset(c *gin.Context) {
	key := c.GetHeader(HeaderAdminKey)
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.service.Reset(c.Request.Context()); err != nil {
		slog.Error("failed to reset visitor count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reset visitor count",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     0,
		"reset":     true,
		"timestamp": time.Now().UTC(),
	})
}
