package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"engracedsmile/internal/notifications"
	"engracedsmile/internal/shared/config"
	"engracedsmile/internal/shared/database"
	"engracedsmile/pkg/logger"
	"engracedsmile/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// a missing .env is normal in containers
	if err := godotenv.Load(); err != nil {
		logger.GetDefault().Debug("no .env file loaded", slog.Any("error", err))
	}

	if err := run(); err != nil {
		logger.GetDefault().Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	log := logger.GetDefault()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Paystack.SecretKey == "" {
		log.Warn("PAYSTACK_SECRET_KEY is not set, payment verification and webhooks will fail")
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing databases", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher notifications.Publisher = notifications.NoopPublisher{}
	notifier, err := notifications.NewService(cfg.Kafka, cfg.Email)
	if err != nil {
		log.Error("notifications disabled", slog.Any("error", err))
	} else {
		publisher = notifier.Publisher()
		notifier.Start(ctx)
		defer func() {
			if err := notifier.Stop(); err != nil {
				log.Error("stopping notification service", slog.Any("error", err))
			}
		}()
		log.Info("notification service started", slog.Bool("kafka", cfg.Kafka.Enabled))
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        newEngine(cfg, db, publisher, newRateLimiter(cfg, db)),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening",
			slog.String("address", srv.Addr),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRateLimiter returns nil when limiting is off or there is no Redis to count in
func newRateLimiter(cfg *config.Config, db *database.DB) *ratelimit.RateLimiter {
	rl := cfg.RateLimit
	if !rl.Enabled || db.Redis == nil {
		logger.GetDefault().Info("rate limiting disabled", slog.Bool("configured", rl.Enabled))
		return nil
	}
	return ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
		Enabled:         rl.Enabled,
		WindowDuration:  rl.WindowDuration,
		DefaultRequests: rl.DefaultRequests,
		PublicRequests:  rl.PublicRequests,
		AuthRequests:    rl.AuthRequests,
		BookingRequests: rl.BookingRequests,
		PaymentRequests: rl.PaymentRequests,
		WebhookRequests: rl.WebhookRequests,
		AdminRequests:   rl.AdminRequests,
		HealthRequests:  rl.HealthRequests,
		WhitelistedIPs:  rl.WhitelistedIPs,
	})
}
