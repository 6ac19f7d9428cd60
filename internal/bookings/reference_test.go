package bookings

import (
	"regexp"
	"testing"
	"time"
)

var referencePattern = regexp.MustCompile(`^ES\d{8}[0-9A-F]{8}$`)

func TestNewReference_Format(t *testing.T) {
	at := time.Date(2026, 10, 14, 23, 30, 0, 0, time.FixedZone("WAT", 3600))
	ref := NewReference(at)

	if !referencePattern.MatchString(ref) {
		t.Fatalf("reference %q does not match %s", ref, referencePattern)
	}
	// 23:30 WAT is 22:30 UTC on the same day
	if ref[2:10] != "20261014" {
		t.Fatalf("expected UTC date 20261014, got %s", ref[2:10])
	}
}

func TestNewReference_Unique(t *testing.T) {
	seen := make(map[string]bool)
	now := time.Now()
	for i := 0; i < 1000; i++ {
		ref := NewReference(now)
		if seen[ref] {
			t.Fatalf("duplicate reference %s after %d draws", ref, i)
		}
		seen[ref] = true
	}
}
