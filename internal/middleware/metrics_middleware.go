package middleware

import (
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/metrics"

	"github.com/gin-gonic/gin"
)

func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start).Seconds())
	}
}
