package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1792000030, 0)

func newTestLimiter(t *testing.T, cfg Config) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, &cfg)
	limiter.now = func() time.Time { return fixedNow }
	return limiter, mock
}

func TestIsAllowed_CountsWithinWindow(t *testing.T) {
	limiter, mock := newTestLimiter(t, Config{Enabled: true, WindowDuration: time.Minute, BookingRequests: 2})
	key := "engracedsmile:ratelimit:booking:10.0.0.1:29866667"

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)

	ctx := context.Background()
	first, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)
	assert.Equal(t, int64(1792000020+60), first.ResetTime)

	second, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Equal(t, 0, third.Remaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowed_WhitelistAndDisabledSkipRedis(t *testing.T) {
	limiter, mock := newTestLimiter(t, Config{Enabled: true, WindowDuration: time.Minute, DefaultRequests: 1, WhitelistedIPs: []string{"10.0.0.9"}})
	result, err := limiter.IsAllowed(context.Background(), "10.0.0.9", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	disabled, _ := newTestLimiter(t, Config{Enabled: false, DefaultRequests: 1})
	result, err = disabled.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRateLimitType(t *testing.T) {
	tests := map[string]RateLimitType{
		"/health":                          RateLimitTypeHealth,
		"/api/v1/payments/webhook":         RateLimitTypeWebhook,
		"/api/v1/payments/verify":          RateLimitTypePayment,
		"/api/v1/admin/bookings":           RateLimitTypeAdmin,
		"/api/v1/auth/login":               RateLimitTypeAuth,
		"/api/v1/bookings/:id/cancel":      RateLimitTypeBooking,
		"/api/v1/trips/search":             RateLimitTypePublic,
		"/api/v1/something-else/unmatched": RateLimitTypeDefault,
	}
	for path, want := range tests {
		assert.Equal(t, want, getRateLimitType(path), path)
	}
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, mock := newTestLimiter(t, Config{Enabled: true, WindowDuration: time.Minute, PaymentRequests: 1})
	key := "engracedsmile:ratelimit:payment:192.0.2.1:29866667"
	mock.ExpectIncr(key).SetVal(2)

	engine := gin.New()
	engine.Use(Middleware(limiter))
	engine.POST("/api/v1/payments/verify", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", nil)
	req.RemoteAddr = "192.0.2.1:4312"
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "50", w.Header().Get("Retry-After"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMiddleware_FailsOpenWhenRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, mock := newTestLimiter(t, Config{Enabled: true, WindowDuration: time.Minute, WebhookRequests: 5})
	key := "engracedsmile:ratelimit:payment_webhook:192.0.2.1:29866667"
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

	engine := gin.New()
	engine.Use(Middleware(limiter))
	engine.POST("/api/v1/payments/webhook", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", nil)
	req.RemoteAddr = "192.0.2.1:4312"
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
