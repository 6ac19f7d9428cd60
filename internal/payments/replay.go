package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"engracedsmile/internal/shared/constants"
	"engracedsmile/pkg/cache"
	"engracedsmile/pkg/logger"
)

// ReplayGuard remembers webhook bodies already handled. It only saves work:
// the booking CAS keeps duplicates harmless when Redis is unavailable.
type ReplayGuard struct {
	cache cache.Service
	ttl   time.Duration
}

func NewReplayGuard(c cache.Service, ttl time.Duration) *ReplayGuard {
	if ttl <= 0 {
		ttl = constants.TTL_WEBHOOK_REPLAY
	}
	return &ReplayGuard{cache: c, ttl: ttl}
}

func digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// FirstDelivery claims body and reports whether nobody had claimed it yet
func (g *ReplayGuard) FirstDelivery(ctx context.Context, body []byte) bool {
	if g == nil || g.cache == nil {
		return true
	}
	ok, err := g.cache.SetNX(ctx, constants.BuildWebhookSeenKey(digest(body)), "1", g.ttl)
	if err != nil {
		logger.GetDefault().WarnContext(ctx, "webhook replay guard unavailable", slog.Any("error", err))
		return true
	}
	return ok
}

// Release forgets body so a gateway retry is processed again
func (g *ReplayGuard) Release(ctx context.Context, body []byte) {
	if g == nil || g.cache == nil {
		return
	}
	if err := g.cache.Delete(ctx, constants.BuildWebhookSeenKey(digest(body))); err != nil {
		logger.GetDefault().WarnContext(ctx, "failed to release webhook replay key", slog.Any("error", err))
	}
}
