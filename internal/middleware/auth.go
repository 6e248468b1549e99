package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"casasmart/internal/authz"
)

const (
	CtxUserID = "user_id"
	CtxRoleID = "role_id"
	CtxPhone  = "phone"
)

// список публичных эндпоинтов, которые не требуют токена
func isPublicPath(method, path string) bool {
	switch path {
	case "/login", "/register", "/healthz", "/metrics":
		return true
	case "/bookings":
		return method == http.MethodPost
	}
	return strings.HasPrefix(path, "/swagger")
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// AuthMiddleware validates the bearer token and puts user id, role and phone into the context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if isPublicPath(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims, err := authz.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRoleID, claims.RoleID)
		c.Set(CtxPhone, claims.Phone)
		c.Next()
	}
}
