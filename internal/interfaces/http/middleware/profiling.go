package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// ProfilingLabels tags profile samples taken while a request runs with its
// route template and method. Unmatched routes are labelled "unmatched".
func ProfilingLabels() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels("route", route, "method", c.Request.Method), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
