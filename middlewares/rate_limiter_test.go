package middlewares_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"linkup/middlewares"
)

func limitedServer(t *testing.T, conf middlewares.LimiterConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rl := middlewares.NewRateLimiter(conf)
	s := gin.New()
	s.Use(rl.Middleware(func(c *gin.Context) string { return c.ClientIP() }))
	s.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return s
}

func TestRateLimiter_BlocksBeyondBurst(t *testing.T) {
	s := limitedServer(t, middlewares.LimiterConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})

	if w := get(s, "/ping"); w.Code != http.StatusOK {
		t.Fatalf("first request: want 200, got %d", w.Code)
	}

	w := get(s, "/ping")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: want 429, got %d", w.Code)
	}
	if ra := w.Header().Get("Retry-After"); ra != "1" {
		t.Fatalf("want Retry-After 1, got %q", ra)
	}
}

func TestRateLimiter_BurstAllowsParallelRequests(t *testing.T) {
	s := limitedServer(t, middlewares.LimiterConfig{RPS: 1, Burst: 5, IdleTTL: time.Minute})

	for i := 1; i <= 5; i++ {
		if w := get(s, "/ping"); w.Code != http.StatusOK {
			t.Fatalf("request %d within burst blocked with %d", i, w.Code)
		}
	}
	if w := get(s, "/ping"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("request past burst: want 429, got %d", w.Code)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middlewares.NewRateLimiter(middlewares.LimiterConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})
	s := gin.New()
	s.Use(rl.Middleware(func(c *gin.Context) string { return c.Query("who") }))
	s.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	if w := get(s, "/ping?who=a"); w.Code != http.StatusOK {
		t.Fatalf("key a: want 200, got %d", w.Code)
	}
	if w := get(s, "/ping?who=a"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("key a again: want 429, got %d", w.Code)
	}
	if w := get(s, "/ping?who=b"); w.Code != http.StatusOK {
		t.Fatalf("key b must have its own bucket, got %d", w.Code)
	}
}
