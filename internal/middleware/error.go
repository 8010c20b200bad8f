package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/walkin-api/internal/handler"
)

// ErrorHandler answers for handlers that recorded an error with c.Error but
// wrote no response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		handler.WriteError(c, c.Errors.Last().Err)
	}
}
