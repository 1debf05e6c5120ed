package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(0.1, 5) // one every 10s, burst of 5
	defer rl.Stop()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i+1)
	}

	// 6th request should be rate limited (exceeded burst)
	assert.False(t, rl.Allow("a"))
}

func TestRateLimiter_DifferentKeys(t *testing.T) {
	rl := NewRateLimiter(0.1, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("a"))
	}
	assert.False(t, rl.Allow("a"))

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("b"), "request %d", i+1)
	}
	assert.Equal(t, 2, rl.Size())
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	rl.Allow("a")
	rl.evict(time.Now())
	assert.Equal(t, 1, rl.Size())

	rl.evict(time.Now().Add(LimiterTTL + time.Second))
	assert.Zero(t, rl.Size())

	// Stop is idempotent
	rl.Stop()
}

func TestTokenFingerprint(t *testing.T) {
	a := TokenFingerprint("token-a")
	assert.Len(t, a, 16)
	assert.Equal(t, a, TokenFingerprint("token-a"))
	assert.NotEqual(t, a, TokenFingerprint("token-b"))
	assert.NotContains(t, a, "token")
}

func rateLimitedRequest(rl *RateLimiter, token string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/export/pdf", nil)
	if token != "" {
		req = req.WithContext(context.WithValue(req.Context(), TokenKey, token))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})(c)
	return rec
}

func TestRateLimitMiddleware_LimitsPerToken(t *testing.T) {
	rl := NewRateLimiter(0.1, 2)
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		rec := rateLimitedRequest(rl, "token-a")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := rateLimitedRequest(rl, "token-a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), errorTypeRateLimit)

	// another token has its own budget
	rec = rateLimitedRequest(rl, "token-b")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_FallsBackToClientIP(t *testing.T) {
	rl := NewRateLimiter(0.1, 1)
	defer rl.Stop()

	assert.Equal(t, http.StatusOK, rateLimitedRequest(rl, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(rl, "").Code)
}
