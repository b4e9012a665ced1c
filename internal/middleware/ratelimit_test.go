package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(rate int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(rate, time.Minute).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	r := rateLimitedRouter(3)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	}
}

func TestRateLimiterBlocksOverBudget(t *testing.T) {
	r := rateLimitedRouter(2)

	require.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2"))
	require.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2"))
	require.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.2"))
}

func TestRateLimiterTracksPerIP(t *testing.T) {
	r := rateLimitedRouter(1)

	require.Equal(t, http.StatusOK, doRequest(r, "10.0.0.3"))
	require.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.3"))
	// A different client still has its own budget.
	require.Equal(t, http.StatusOK, doRequest(r, "10.0.0.4"))
}
