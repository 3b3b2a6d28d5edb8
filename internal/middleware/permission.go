package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/authz"
	"github.com/shopkit/shopadmin/internal/pkg/response"
)

// RequirePermission gates a route on the immutable role to permission map.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRoleKey)
		roleName, _ := role.(string)
		if !authz.Allowed(roleName, perm) {
			response.Fail(c, http.StatusForbidden, "You do not have permission to perform this action.")
			c.Abort()
			return
		}
		c.Next()
	}
}
