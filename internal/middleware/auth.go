package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blogspace/patientzero/internal/logging"
)

// UsernameKey is the gin context key holding the authenticated username.
const UsernameKey = "username"

// AuthMiddleware requires a valid bearer access token and stores its
// username in the gin context.
func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Missing access token", "is_success": false})
			return
		}

		claims, err := tokens.ParseAccess(strings.TrimSpace(token))
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("Rejected access token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Invalid or expired access token", "is_success": false})
			return
		}

		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// Username returns the authenticated username, or "" on public routes.
func Username(c *gin.Context) string {
	return c.GetString(UsernameKey)
}
