package middleware

import "github.com/gin-gonic/gin"

// NoStore keeps patient data out of browser and proxy caches, including the
// CSV downloads and print pages.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, private")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
