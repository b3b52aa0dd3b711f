package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buytown/admin-console/internal/auth"
)

// SessionState is the read side of the session manager.
type SessionState interface {
	State() auth.State
}

// RequireSession lets a request through only once the session is resolved and
// authenticated. It never inspects the token itself; the backend decides
// whether the token is still good.
func RequireSession(sessions SessionState) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := sessions.State()

		if state.Loading {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session is still being restored"})
			return
		}
		if !state.IsAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		if state.User != nil {
			c.Set("userID", state.User.ID)
			c.Set("roleID", state.User.RoleID)
		}

		c.Next()
	}
}
