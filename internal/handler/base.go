package handler

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/walkin-api/internal/form"
	"github.com/jwalitptl/walkin-api/internal/model"
	apperrors "github.com/jwalitptl/walkin-api/pkg/errors"
)

// Context keys shared with the middleware package.
const (
	ContextSession   = "session"
	ContextRequestID = "request_id"
)

// TokenCookie carries the access token for browser navigations such as the
// print pages, which cannot send an Authorization header.
const TokenCookie = "walkin_token"

// BearerToken extracts the token from the Authorization header, falling back
// to the token cookie.
func BearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if token, err := c.Cookie(TokenCookie); err == nil {
		return token
	}
	return ""
}

// Attachment marks the response as a download. The name is quoted and escaped
// as needed, since it can carry user-supplied filter values.
func Attachment(c *gin.Context, filename string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
}

// fieldErrorer is implemented by errors that carry per-input messages.
type fieldErrorer interface {
	FieldErrors() []form.FieldError
}

// Session returns the staff session attached by the auth middleware, or an
// anonymous session that fails every guard.
func Session(c *gin.Context) model.Session {
	if v, ok := c.Get(ContextSession); ok {
		if sess, ok := v.(*model.StaffSession); ok && sess.IsLoggedIn() {
			return sess
		}
	}
	return model.AnonymousSession{}
}

func SetSession(c *gin.Context, sess *model.StaffSession) {
	c.Set(ContextSession, sess)
}

// StatusFor maps a service error to its response status.
func StatusFor(err error) int {
	if errors.Is(err, model.ErrNotLoggedIn) {
		return http.StatusUnauthorized
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// RespondError records err on the context and writes the JSON error body.
// Internal details are only logged.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	WriteError(c, err)
}

// RespondErrorWithData is RespondError with a payload the client needs to
// recover, such as the form it submitted.
func RespondErrorWithData(c *gin.Context, err error, data interface{}) {
	_ = c.Error(err)
	writeError(c, err, data)
}

// WriteError writes the error body without recording err on the context.
func WriteError(c *gin.Context, err error) {
	writeError(c, err, nil)
}

func writeError(c *gin.Context, err error, data interface{}) {
	status := StatusFor(err)

	resp := NewErrorResponse(http.StatusText(status))
	resp.Data = data
	switch appErr, ok := apperrors.As(err); {
	case errors.Is(err, model.ErrNotLoggedIn):
		resp.Message = model.ErrNotLoggedIn.Error()
	case ok && status < http.StatusInternalServerError:
		resp.Message = appErr.Message
	case ok:
		resp.Message = appErr.Message
		log.Error().Err(err).Str("path", c.Request.URL.Path).Str("request_id", c.GetString(ContextRequestID)).Msg("request failed")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Str("request_id", c.GetString(ContextRequestID)).Msg("unexpected error")
	}

	var fe fieldErrorer
	if errors.As(err, &fe) {
		resp.Errors = fe.FieldErrors()
	}
	resp.TraceID = c.GetString(ContextRequestID)
	c.AbortWithStatusJSON(status, resp)
}
