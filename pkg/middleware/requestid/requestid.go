package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID between client, server, and any proxy hops.
const Header = "X-Request-ID"

const contextKey = "request_id"

// Middleware tags every request with an ID. A client-supplied ID is kept so
// callers can correlate their own traces with server logs.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID for the current request, or "" when the
// middleware did not run.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
