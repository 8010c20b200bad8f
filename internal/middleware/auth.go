package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/walkin-api/internal/handler"
	"github.com/jwalitptl/walkin-api/internal/service/auth"
)

type AuthMiddleware struct {
	authService auth.AuthService
	loginURL    string
}

func NewAuthMiddleware(authService auth.AuthService, loginURL string) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		loginURL:    loginURL,
	}
}

// Authenticate attaches the staff session for a valid token and rejects
// everything else with 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.attach(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("not logged in"))
			return
		}
		c.Next()
	}
}

// RequirePage is Authenticate for HTML pages: instead of a 401 the browser is
// sent to the login page.
func (m *AuthMiddleware) RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.attach(c) {
			c.Redirect(http.StatusFound, m.loginURL)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) attach(c *gin.Context) bool {
	token := handler.BearerToken(c)
	if token == "" {
		return false
	}
	sess, err := m.authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		return false
	}
	handler.SetSession(c, sess)
	return true
}
