package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seatbill/seatbill/internal/types"
)

// RequestID tags every request with an id for log correlation. An inbound
// X-Request-ID header is trusted; otherwise one is generated. The id is
// carried on the request context and echoed back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(types.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(types.HeaderRequestID, requestID)

		c.Next()
	}
}
