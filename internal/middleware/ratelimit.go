package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/pkg/response"
)

const rateLimitEntries = 4096

// RateLimit allows one request per window for a given ip+path pair. State
// lives in a bounded expirable LRU, so idle clients age out on their own.
func RateLimit(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	seen := expirable.NewLRU[string, struct{}](rateLimitEntries, nil, window)
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := strings.Join([]string{c.ClientIP(), path}, "|")
		if _, hit := seen.Get(key); hit {
			logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
				zap.String("ip", c.ClientIP()), zap.String("path", path))
			response.Fail(c, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			c.Abort()
			return
		}
		seen.Add(key, struct{}{})
		c.Next()
	}
}
