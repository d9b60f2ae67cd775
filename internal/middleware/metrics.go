package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/martialcamp/enrollment-api/internal/service"
)

// Metrics records method, route, status, and latency for every request.
// Unmatched routes collapse into the raw path; the scrape endpoint itself
// is excluded so it does not inflate its own series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
