package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// printPageCSP lets the print pages run their inline style and the
// window.print() onload handler, nothing else.
var printPageCSP = []string{
	"default-src 'none'",
	"style-src 'unsafe-inline'",
	"script-src 'unsafe-inline'",
	"frame-ancestors 'none'",
}

// SecurityHeaders sets the response headers every endpoint shares.
func SecurityHeaders() gin.HandlerFunc {
	csp := strings.Join(printPageCSP, "; ")
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", csp)
		c.Next()
	}
}
