package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetworks/workorder-api/internal/service"
)

// Metrics records request duration and count per route. It uses the gin
// route template so path cardinality stays bounded.
func Metrics(metricsService *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsService.ObserveHTTPRequest(
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
