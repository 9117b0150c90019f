package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/service"
)

// routeLabel keeps the route label bounded: matched requests use the gin
// route template, everything else shares one bucket.
func routeLabel(c *gin.Context) string {
	if tpl := c.FullPath(); tpl != "" {
		return tpl
	}
	return "unmatched"
}

// Metrics records duration and status for every handled request. The scrape
// endpoint itself is not observed.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}
