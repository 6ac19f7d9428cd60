package trips

import (
	"context"
	"log/slog"

	"engracedsmile/internal/shared/constants"
	"engracedsmile/pkg/cache"
	"engracedsmile/pkg/logger"

	"github.com/google/uuid"
)

// Invalidator drops cached views of a trip after its seats or details change
type Invalidator interface {
	InvalidateTrip(ctx context.Context, tripID uuid.UUID)
}

// SearchCache invalidates every cached search result plus the trip's
// detail entry. Search keys are not indexed by trip, so any seat change
// clears the whole search namespace.
type SearchCache struct {
	cache cache.Service
}

func NewSearchCache(c cache.Service) *SearchCache {
	return &SearchCache{cache: c}
}

func (s *SearchCache) InvalidateTrip(ctx context.Context, tripID uuid.UUID) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildTripDetailKey(tripID.String())); err != nil {
		logger.GetDefault().WarnContext(ctx, "failed to drop trip detail cache", slog.String("trip_id", tripID.String()), slog.Any("error", err))
	}
	if err := s.cache.DeletePattern(ctx, constants.CACHE_KEY_TRIPS_SEARCH+":*"); err != nil {
		logger.GetDefault().WarnContext(ctx, "failed to drop trip search cache", slog.Any("error", err))
	}
}
