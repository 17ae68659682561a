package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext scopes store calls to the inbound request. Contexts built
// without a request get a background context.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}
