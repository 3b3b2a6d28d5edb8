package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/pkg/jwt"
	"github.com/shopkit/shopadmin/internal/pkg/response"
)

const (
	ContextAccountIDKey = "account_id"
	ContextPoolKey      = "auth_pool"
	ContextRoleKey      = "auth_role"
)

// Auth resolves the bearer token and exposes the account id, pool and role to
// downstream handlers. Tokens are self-contained; nothing is loaded from the
// store.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, secret)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// the request through either way.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, secret); ok {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, secret []byte) (*jwt.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	claims, err := jwt.ParseToken(parts[1], secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextAccountIDKey, claims.AccountID)
	c.Set(ContextPoolKey, claims.Pool)
	c.Set(ContextRoleKey, claims.Role)
}
