package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adityan21/campus-event-backend/internal/auth"
)

// RBACMiddleware checks if the user has one of the allowed roles
func RBACMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// RequireOrganizer allows organizers and admins through.
func RequireOrganizer() gin.HandlerFunc {
	return RBACMiddleware(auth.RoleOrganizer, auth.RoleAdmin)
}

// RequireAdmin allows admins only.
func RequireAdmin() gin.HandlerFunc {
	return RBACMiddleware(auth.RoleAdmin)
}
