package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTripSearchKey(t *testing.T) {
	assert.Equal(t,
		"engracedsmile:trips:search:from:lagos:to:port_harcourt:date:2026-10-20:pax:2:cat:any:promo:false",
		BuildTripSearchKey(" Lagos", "Port Harcourt", "2026-10-20", 2, "", false))
	assert.Equal(t,
		"engracedsmile:trips:search:from:abuja:to:enugu:date:2026-10-21:pax:1:cat:luxury:promo:true",
		BuildTripSearchKey("Abuja", "Enugu", "2026-10-21", 1, "LUXURY", true))
}

func TestKeysFallUnderInvalidationPattern(t *testing.T) {
	assert.Contains(t, BuildTripDetailKey("abc"), "engracedsmile:trips:")
	assert.Equal(t, "engracedsmile:payments:webhook:sha256:ff", BuildWebhookSeenKey("ff"))
}
