package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"engracedsmile/internal/shared/utils/response"
	"engracedsmile/pkg/logger"

	"github.com/gin-gonic/gin"
)

type routeRule struct {
	match func(path string) bool
	class RateLimitType
}

func prefix(p string) func(string) bool   { return func(s string) bool { return strings.HasPrefix(s, p) } }
func suffix(p string) func(string) bool   { return func(s string) bool { return strings.HasSuffix(s, p) } }
func contains(p string) func(string) bool { return func(s string) bool { return strings.Contains(s, p) } }

// first match wins; the webhook rule sits above /payments/ so gateway
// retries get their own, larger budget
var routeRules = []routeRule{
	{prefix("/health"), RateLimitTypeHealth},
	{prefix("/ping"), RateLimitTypeHealth},
	{prefix("/status"), RateLimitTypeHealth},
	{suffix("/payments/webhook"), RateLimitTypeWebhook},
	{contains("/admin/"), RateLimitTypeAdmin},
	{contains("/auth/"), RateLimitTypeAuth},
	{contains("/payments/"), RateLimitTypePayment},
	{contains("/bookings"), RateLimitTypeBooking},
	{contains("/trips"), RateLimitTypePublic},
}

func getRateLimitType(path string) RateLimitType {
	for _, rule := range routeRules {
		if rule.match(path) {
			return rule.class
		}
	}
	return RateLimitTypeDefault
}

// Middleware applies the limit for the matched route's class. When the
// counter store errors the request goes through.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	log := logger.GetDefault()
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		class := getRateLimitType(path)

		result, err := rateLimiter.IsAllowed(ctx, ip, class)
		if err != nil {
			log.WarnContext(ctx, "rate limit check failed, allowing request",
				slog.String("ip", ip), slog.String("class", string(class)), slog.Any("error", err))
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if result.Allowed {
			c.Next()
			return
		}

		log.LogRateLimitExceeded(ctx, ip, path)
		h.Set("Retry-After", strconv.FormatInt(max(result.ResetTime-rateLimiter.now().Unix(), 1), 10))
		response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded", gin.H{
			"limit":      result.Limit,
			"reset_time": result.ResetTime,
		})
		c.Abort()
	}
}
