package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"posledger/internal/infrastructure/metrics"
)

// Metrics middleware records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}
