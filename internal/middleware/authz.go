package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casasmart/internal/authz"
)

func RequireRoles(allowed ...int) gin.HandlerFunc {
	allowedSet := map[int]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		v, exists := c.Get(CtxRoleID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		roleID, _ := v.(int)
		if _, ok := allowedSet[roleID]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdmin guards the back-office routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(authz.RoleAdmin)
}

// RequirePhone lets through only callers whose token carries a phone; the portal matches records by it.
func RequirePhone() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authz.NormalizePhone(c.GetString(CtxPhone)) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no phone linked to this account"})
			return
		}
		c.Next()
	}
}
