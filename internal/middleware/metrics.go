package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/observability"
)

// Metrics records request counts and latencies by route template
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
