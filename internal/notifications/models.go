package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingConfirmed      EventType = "booking.confirmed"
	EventBookingPaymentFailed  EventType = "booking.payment_failed"
	EventBookingRefundRequired EventType = "booking.refund_required"
	EventBookingRefunded       EventType = "booking.refunded"
	EventBookingCancelled      EventType = "booking.cancelled"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventBookingConfirmed, EventBookingPaymentFailed, EventBookingRefundRequired,
		EventBookingRefunded, EventBookingCancelled:
		return true
	}
	return false
}

// BookingEvent is published after every committed booking state change.
// It carries everything the email workers need so they never read the
// database.
type BookingEvent struct {
	ID               uuid.UUID  `json:"id"`
	Type             EventType  `json:"type"`
	BookingID        uuid.UUID  `json:"booking_id"`
	BookingReference string     `json:"booking_reference"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	TripID           uuid.UUID  `json:"trip_id"`
	PassengerName    string     `json:"passenger_name"`
	PassengerEmail   string     `json:"passenger_email"`
	PassengerPhone   string     `json:"passenger_phone"`
	PassengerCount   int        `json:"passenger_count"`
	Amount           int64      `json:"amount"` // kobo
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	FromCity         string     `json:"from_city,omitempty"`
	ToCity           string     `json:"to_city,omitempty"`
	DepartureTime    *time.Time `json:"departure_time,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

// GetPartitionKey keeps every event of one booking on the same partition
func (e *BookingEvent) GetPartitionKey() string {
	return e.BookingID.String()
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *BookingEvent) stamp() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
}
