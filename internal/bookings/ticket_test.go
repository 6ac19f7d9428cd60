package bookings

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildETicketPDF_WithoutTrip(t *testing.T) {
	b := &Booking{BookingReference: "ES20261014DEADBEEF", PassengerName: "Ada Obi", PassengerCount: 1, TotalAmount: 1500050}

	pdf, name, err := buildETicketPDF(b, time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "ETICKET_ES20261014DEADBEEF.pdf", name)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestKoboToNaira(t *testing.T) {
	assert.Equal(t, "15000.50", koboToNaira(1500050))
	assert.Equal(t, "0.05", koboToNaira(5))
	assert.Equal(t, "0.00", koboToNaira(0))
}
