package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/patient-portal/internal/config"
)

func TestRateLimitBlocksBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(config.RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             3,
	})

	r := gin.New()
	r.Use(limiter.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do())
	}
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestRateLimitBucketsArePerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(config.RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
	})

	r := gin.New()
	r.Use(limiter.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))

	// a second client still has its own untouched bucket
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}
