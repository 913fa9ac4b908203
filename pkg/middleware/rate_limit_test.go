package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// withSub injects a claims map so each test gets its own limiter bucket
// instead of sharing the httptest client IP.
func withSub(sub string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": sub})
		c.Next()
	}
}

func newLimitedRouter(sub string, rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", withSub(sub), RateLimitMiddleware(rps, burst), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func doGet(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	r := newLimitedRouter("acct-allows", 10, 3)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doGet(r).Code)
	}
}

func TestRateLimit_BlocksWhenBurstExhausted(t *testing.T) {
	r := newLimitedRouter("acct-blocks", 0.001, 2)
	require.Equal(t, http.StatusOK, doGet(r).Code)
	require.Equal(t, http.StatusOK, doGet(r).Code)
	w := doGet(r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	r1 := newLimitedRouter("acct-ind-1", 0.001, 1)
	r2 := newLimitedRouter("acct-ind-2", 0.001, 1)
	require.Equal(t, http.StatusOK, doGet(r1).Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r1).Code)
	// a different account still has its full burst
	require.Equal(t, http.StatusOK, doGet(r2).Code)
}

func TestLimiterKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	require.Equal(t, "ip:192.0.2.1", limiterKey(c))

	c.Set("claims", map[string]interface{}{"sub": "ana"})
	require.Equal(t, "sub:ana", limiterKey(c))

	// empty sub falls back to the IP
	c.Set("claims", map[string]interface{}{"sub": ""})
	require.Equal(t, "ip:192.0.2.1", limiterKey(c))
}
