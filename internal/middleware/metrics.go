package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/metrics"
)

// Metrics records a counter increment and a latency observation for every
// request, keyed by method, matched route template and status code.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// Unmatched routes would explode label cardinality if keyed
			// by raw URL.
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.Requests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.Latency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
