package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/observability"
)

type MetricsHandler struct {
	registry *observability.Registry
}

func NewMetricsHandler(registry *observability.Registry) *MetricsHandler {
	return &MetricsHandler{registry: registry}
}

// Exposition renders the text format for a scraping collector. The endpoint
// only reads the registry; it performs no writes.
func (h *MetricsHandler) Exposition(c *gin.Context) {
	body, err := h.registry.RenderText()
	if err != nil {
		slog.Error("failed to render metrics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate metrics",
		})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// JSON renders the same data grouped by metric name, for consumers that
// would rather not parse the exposition grammar.
func (h *MetricsHandler) JSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.RenderJSON())
}
