package constants

import (
	"fmt"
	"strings"
	"time"
)

// Redis keys follow engracedsmile:{module}:{operation}:{params}

const (
	CACHE_PREFIX = "engracedsmile"
)

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_SHORT   = 6 * time.Hour    // routes, vehicle catalogue
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // dashboard figures
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // trip search results
	TTL_WEBHOOK_REPLAY = 24 * time.Hour   // paystack retries within a day
)

// ================== TRIPS MODULE ==================

const (
	CACHE_KEY_TRIPS_SEARCH = CACHE_PREFIX + ":trips:search" // + :from:X:to:Y:date:Z:pax:N:cat:C:promo:P
	CACHE_KEY_TRIP_DETAIL  = CACHE_PREFIX + ":trips:detail:uuid:"

	TTL_TRIPS_SEARCH = TTL_DYNAMIC_SHORT
	TTL_TRIP_DETAIL  = TTL_DYNAMIC_SHORT
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_DASHBOARD = CACHE_PREFIX + ":analytics:dashboard:admin"

	TTL_ANALYTICS_DASHBOARD = TTL_DYNAMIC_MEDIUM
)

// ================== PAYMENTS MODULE ==================

const (
	CACHE_KEY_WEBHOOK_SEEN = CACHE_PREFIX + ":payments:webhook:sha256:" // + body digest
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_TRIPS_ALL = CACHE_PREFIX + ":trips:*"
	PATTERN_INVALIDATE_ANALYTICS = CACHE_PREFIX + ":analytics:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildTripSearchKey -> "engracedsmile:trips:search:from:lagos:to:abuja:date:2026-10-20:pax:2:cat:any:promo:false"
func BuildTripSearchKey(from, to, date string, passengers int, category string, promoOnly bool) string {
	if category == "" {
		category = "any"
	}
	return fmt.Sprintf("%s:from:%s:to:%s:date:%s:pax:%d:cat:%s:promo:%t",
		CACHE_KEY_TRIPS_SEARCH,
		normalizeKeyPart(from),
		normalizeKeyPart(to),
		date,
		passengers,
		normalizeKeyPart(category),
		promoOnly,
	)
}

func BuildTripDetailKey(tripID string) string {
	return CACHE_KEY_TRIP_DETAIL + tripID
}

func BuildWebhookSeenKey(digest string) string {
	return CACHE_KEY_WEBHOOK_SEEN + digest
}

func normalizeKeyPart(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
