package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitBlocksWithinWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limit := RateLimit(10 * time.Second)

	c1, _ := gin.CreateTestContext(httptest.NewRecorder())
	c1.Request = httptest.NewRequest("POST", "/api/v1/login", nil)
	limit(c1)
	require.False(t, c1.IsAborted())

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest("POST", "/api/v1/login", nil)
	limit(c2)
	require.True(t, c2.IsAborted())

	// A different path from the same client is its own bucket.
	c3, _ := gin.CreateTestContext(httptest.NewRecorder())
	c3.Request = httptest.NewRequest("POST", "/api/v1/register", nil)
	limit(c3)
	require.False(t, c3.IsAborted())
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limit := RateLimit(0)

	for i := 0; i < 3; i++ {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("POST", "/api/v1/login", nil)
		limit(c)
		require.False(t, c.IsAborted())
	}
}
