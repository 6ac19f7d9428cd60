package main

import (
	"time"

	"engracedsmile/api/routes"
	"engracedsmile/internal/notifications"
	"engracedsmile/internal/shared/config"
	"engracedsmile/internal/shared/database"
	"engracedsmile/pkg/logger"
	"engracedsmile/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func newEngine(cfg *config.Config, db *database.DB, publisher notifications.Publisher, limiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	engine.Use(requestLogger(logger.GetDefault()), gin.Recovery(), cors.New(corsConfig()))
	if limiter != nil {
		engine.Use(ratelimit.Middleware(limiter))
	}

	routes.NewRouter(cfg, db, publisher).SetupRoutes(engine)
	return engine
}

// browsers need the signature header allowed for local webhook replays and
// Content-Disposition exposed to name downloaded tickets
func corsConfig() cors.Config {
	return cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Paystack-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func requestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
