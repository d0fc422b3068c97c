package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole enforces that the gate established an identity with
// one of the given roles. No identity is 401; the wrong role is 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		if !allowed[principal.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "forbidden",
				"code":    http.StatusForbidden,
				"data":    gin.H{},
			})
			return
		}
		c.Next()
	}
}

// RequireIdentity only demands that some identity was established.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentPrincipal(c); !ok {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}
