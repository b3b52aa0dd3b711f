package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConsoleKeyHeader carries the shared key that ties a client to this console.
const ConsoleKeyHeader = "X-Console-Key"

// RequireConsoleKey rejects requests that do not present key. The console holds
// a single administrator session, so any client that gets past this acts as
// that administrator. An empty key disables the check for loopback-only
// deployments.
func RequireConsoleKey(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(ConsoleKeyHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Console key required"})
			return
		}
		c.Next()
	}
}
