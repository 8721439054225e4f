package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/observability"
)

// Metrics records every HTTP exchange into the request counter and the
// duration histogram, exactly once per request. It wraps Recovery in the
// chain, so a panicked handler reaches it as a finished 500 response.
// The matched route template keys the series to bound label cardinality;
// unmatched requests fall back to the raw path.
func Metrics(m *observability.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.RequestsTotal.Inc(c.Request.Method, route, status)
		m.RequestDuration.Observe(duration, c.Request.Method, route, status)
	}
}
