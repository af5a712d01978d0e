package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDHeader = "X-User-ID"

// IdentityMiddleware reads the caller identity resolved by the upstream
// auth layer. Requests without it never reach the handlers.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			respondError(c, http.StatusUnauthorized, "missing user identity")
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
