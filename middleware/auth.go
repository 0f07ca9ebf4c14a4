package middleware

import (
	"net/http"
	"strings"

	"carrental-backend/utils"

	"github.com/gin-gonic/gin"
)

// ContextUserID and ContextRole are the keys handlers read the
// authenticated identity from. Write handlers never trust a
// client-supplied user id; it always comes from here.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("session"); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireAuth validates the session JWT (HTTP-only cookie, or a
// Bearer header for API clients) and injects user_id/role into the
// context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthenticated", "Authentication required.")
			c.Abort()
			return
		}

		claims, err := utils.ParseSessionToken(secret, raw)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "error.invalidToken", "Session is invalid or expired.")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin sits behind RequireAuth and gates the admin surface.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		if role != "admin" {
			utils.JSONError(c, http.StatusForbidden, "error.forbidden", "Admin access required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID reads the authenticated user id injected by RequireAuth.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// IsAdmin reports whether the authenticated session carries the admin
// role.
func IsAdmin(c *gin.Context) bool {
	role, _ := c.Get(ContextRole)
	return role == "admin"
}
