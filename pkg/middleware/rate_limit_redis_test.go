package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisLimitedRouter(t *testing.T, sub string, rps float64, burst int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", withSub(sub), RedisRateLimitMiddleware(client, rps, burst, window), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r, mr
}

func TestRedisRateLimit_AllowsWithinWindow(t *testing.T) {
	// wide window so the requests cannot straddle a bucket boundary;
	// allowed = floor(0*60) + 3 = 3
	r, _ := newRedisLimitedRouter(t, "acct-redis-ok", 0, 3, time.Minute)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doGet(r).Code)
	}
	require.Equal(t, http.StatusTooManyRequests, doGet(r).Code)
}

func TestRedisRateLimit_BlocksOverWindowAllowance(t *testing.T) {
	r, _ := newRedisLimitedRouter(t, "acct-redis-block", 0, 1, time.Minute)
	require.Equal(t, http.StatusOK, doGet(r).Code)
	w := doGet(r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRedisRateLimit_NilClientFallsBackToMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", withSub("acct-redis-nil"), RedisRateLimitMiddleware(nil, 0.001, 1, time.Second), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	require.Equal(t, http.StatusOK, doGet(r).Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r).Code)
}
