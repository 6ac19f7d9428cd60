package bookings

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	referencePrefix   = "ES"
	referenceAttempts = 3
)

// NewReference returns ES + YYYYMMDD + eight upper-case hex characters
// taken from a random UUID, e.g. ES20261014A1B2C3D4
func NewReference(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return referencePrefix + at.UTC().Format("20060102") + suffix
}
