package middlewares

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the single error envelope returned by every endpoint and middleware.
// Error is always a human readable string; driver errors never reach it.
type ErrorBody struct {
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(CtxRequestID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	// fallback header
	return c.GetHeader(requestIDHeader)
}

// AbortWithError stops the chain and writes the envelope.
func AbortWithError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:     message,
		Code:      code,
		RequestID: RequestIDFrom(c),
		Details:   details,
	})
}
