package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limiter.RateLimit())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitPerClient(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{Rate: 0, Burst: 1})
	r := rateLimitedRouter(limiter)

	// Each client gets its own budget.
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:1234"))

	// A throttled neighbour must not starve a fresh client.
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.2:1234"))
}

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{Rate: 0, Burst: 3})
	r := rateLimitedRouter(limiter)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.3:1234"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.3:1234"))
}
