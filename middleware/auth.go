package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vitclubs/utils"
)

// JWTAuthMiddleware resolves the caller identity from the auth cookie (or an
// Authorization header as fallback) and stores it in the gin context as
// "userId". Requests without a valid token are rejected with 401.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenString, err := c.Cookie("token")
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.Error(c, http.StatusUnauthorized, "User not authenticated")
				c.Abort()
				return
			}
			tokenString = parts[1]
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Next()
	}
}
