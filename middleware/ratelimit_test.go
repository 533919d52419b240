package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIPRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewIPRateLimiter(2) // burst of 2

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}
	if !rl.Allow("1.2.3.4") {
		t.Fatal("second request should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third immediate request should be limited")
	}
	// A different IP has its own bucket.
	if !rl.Allow("5.6.7.8") {
		t.Error("other IP should not be limited")
	}
}

func TestRateLimitMiddlewareResponds429(t *testing.T) {
	rl := NewIPRateLimiter(1)

	router := gin.New()
	router.GET("/login", RateLimitMiddleware(rl), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	var last int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		router.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("status after burst = %d, want 429", last)
	}
}
