package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext returns the incoming request's context so cancellation
// reaches the cache and item queries. Falls back to Background when the
// gin context carries no request.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}
