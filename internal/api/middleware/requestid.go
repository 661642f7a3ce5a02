package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/ComputeEngine/internal/shared/id"
)

// HeaderRequestID carries the request id on HTTP requests and responses.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID stamps every request with an id. A caller-supplied
// X-Request-ID is kept when it is a valid id; otherwise a new one is
// generated. The id is echoed in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !id.IsValid(rid) {
			rid = id.NewRequestID().String()
		}
		c.Set(requestIDKey, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the id RequestID stored on c, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
