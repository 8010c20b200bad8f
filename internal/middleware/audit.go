package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/walkin-api/internal/handler"
)

// Audit logs every state-changing request on a resource with the staff
// member who made it.
func Audit(logger zerolog.Logger, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action := ""
		switch c.Request.Method {
		case http.MethodPost:
			action = "create"
		case http.MethodPut, http.MethodPatch:
			action = "update"
		case http.MethodDelete:
			action = "delete"
		default:
			return
		}

		logger.Info().
			Str("audit", entityType).
			Str("action", action).
			Str("entity_id", c.Param("id")).
			Str("user", handler.Session(c).Username()).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Str("request_id", c.GetString(ContextRequestID)).
			Msg("audit")
	}
}
