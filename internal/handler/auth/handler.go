package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/walkin-api/internal/handler"
	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/service/auth"
	apperrors "github.com/jwalitptl/walkin-api/pkg/errors"
)

type Handler struct {
	svc          auth.AuthService
	secureCookie bool
}

func NewHandler(svc auth.AuthService, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

// RegisterRoutes wires login on the public group and logout on the
// authenticated one.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	protected.POST("/auth/logout", h.Logout)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("invalid login request", err))
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid credentials"))
			return
		}
		handler.RespondError(c, apperrors.Internal(err))
		return
	}

	maxAge := int(time.Until(time.Unix(tokens.ExpiresAt, 0)).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(handler.TokenCookie, tokens.AccessToken, maxAge, "/", "", h.secureCookie, true)

	log.Info().Str("username", req.Username).Msg("staff logged in")
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), handler.BearerToken(c)); err != nil {
		handler.RespondError(c, apperrors.Unauthorized(err))
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(handler.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}
