package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxRequestID is the context key for the request correlation id.
const CtxRequestID = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestID assigns or propagates a correlation id for every request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}
