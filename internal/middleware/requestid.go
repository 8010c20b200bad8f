package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/walkin-api/internal/handler"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = handler.ContextRequestID

	maxRequestIDLength = 64
)

// RequestID propagates the caller's X-Request-ID or mints a time-ordered one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > maxRequestIDLength {
			if id, err := uuid.NewV7(); err == nil {
				rid = id.String()
			} else {
				rid = uuid.NewString()
			}
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}
