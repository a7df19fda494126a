// middlewares/auth_middleware.go
package middlewares

import (
	"net/http"
	"strings"

	"mealtracker/services"
	"mealtracker/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and checks that its
// session has not been revoked. WebSocket clients may pass the token
// as a query parameter instead of a header.
func AuthMiddleware(sessions *services.SessionBroker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		case c.Query("token") != "":
			tokenString = c.Query("token")
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		userID, sessionID, err := utils.ParseJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if _, ok := sessions.CurrentUser(sessionID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		c.Set("userID", userID)
		c.Set("sessionID", sessionID)

		c.Next()
	}
}
