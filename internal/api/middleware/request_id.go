package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header the id is read from and echoed back on.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key the other middlewares and the
	// error translator read the id from.
	RequestIDKey = "request_id"
)

// RequestID tags each request with a correlation id, minting one when the
// caller did not send its own.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
