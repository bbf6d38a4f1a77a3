package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiter_ExhaustedBucketReturns429(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(0, 2, KeyByIP()))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("missing Retry-After header")
	}
	if !strings.Contains(w.Body.String(), "rate_limited") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRateLimiter_KeysIsolateBuckets(t *testing.T) {
	rl := NewRateLimiter(0, 1, func(c *gin.Context) string {
		return c.GetHeader("X-Tenant")
	})
	r := newLimitedRouter(rl)

	do := func(tenant string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Tenant", tenant)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if do("a") != http.StatusOK {
		t.Fatalf("tenant a first request should pass")
	}
	if do("a") != http.StatusTooManyRequests {
		t.Fatalf("tenant a second request should be limited")
	}
	if do("b") != http.StatusOK {
		t.Fatalf("tenant b has its own bucket")
	}
}

func TestNewRateLimiter_CoercesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1", rl.burst)
	}
	rl = NewRateLimiter(1, -3, KeyByIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1", rl.burst)
	}
}

func TestKeyByIP_Prefix(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Request.RemoteAddr = "10.1.2.3:5555"

	key := KeyByIP()(c)
	if !strings.HasPrefix(key, "ip:") {
		t.Fatalf("key %q should carry the ip prefix", key)
	}
}

func TestRateLimiter_GetVisitorReusesBucket(t *testing.T) {
	rl := NewRateLimiter(1, 1, KeyByIP())
	a := rl.getVisitor("k")
	b := rl.getVisitor("k")
	if a != b {
		t.Fatalf("same key must map to the same limiter")
	}
	if len(rl.visitors) != 1 {
		t.Fatalf("visitors = %d, want 1", len(rl.visitors))
	}
}
