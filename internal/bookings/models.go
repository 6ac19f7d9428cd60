package bookings

import (
	"time"

	"engracedsmile/internal/notifications"
	"engracedsmile/internal/trips"

	"github.com/google/uuid"
)

// Booking is one passenger reservation on a trip. SeatReserved is true
// exactly when this booking holds one unit of the trip's inventory.
type Booking struct {
	ID               uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingReference string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"booking_reference"`
	UserID           *uuid.UUID    `gorm:"type:uuid;index" json:"user_id,omitempty"`
	TripID           uuid.UUID     `gorm:"type:uuid;index;not null" json:"trip_id"`
	PassengerName    string        `gorm:"type:varchar(255);not null" json:"passenger_name"`
	PassengerPhone   string        `gorm:"type:varchar(20);not null" json:"passenger_phone"`
	PassengerEmail   string        `gorm:"type:varchar(255);not null;index" json:"passenger_email"`
	SeatNumber       string        `gorm:"type:varchar(10)" json:"seat_number,omitempty"`
	PassengerCount   int           `gorm:"not null;default:1;check:chk_bookings_passengers,passenger_count >= 1" json:"passenger_count"`
	TotalAmount      int64         `gorm:"not null;check:chk_bookings_amount,total_amount > 0" json:"total_amount"` // kobo
	Status           Status        `gorm:"type:varchar(20);not null;default:'pending';index;check:chk_bookings_status,status IN ('pending','confirmed','cancelled','completed')" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index;check:chk_bookings_payment_status,payment_status IN ('pending','paid','failed','refunded')" json:"payment_status"`
	PaymentReference *string       `gorm:"type:varchar(100);uniqueIndex" json:"payment_reference,omitempty"`
	SeatReserved     bool          `gorm:"not null;default:false" json:"seat_reserved"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Trip *trips.Trip `gorm:"foreignKey:TripID" json:"trip,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) State() StatePair {
	return StatePair{Status: b.Status, PaymentStatus: b.PaymentStatus}
}

// OwnedBy reports whether userID placed this booking. Guest bookings have
// no owner.
func (b *Booking) OwnedBy(userID uuid.UUID) bool {
	return b.UserID != nil && *b.UserID == userID
}

// Event builds the notification payload for this booking's current state
func (b *Booking) Event(eventType notifications.EventType, reason string) notifications.BookingEvent {
	event := notifications.BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
		TripID:           b.TripID,
		PassengerName:    b.PassengerName,
		PassengerEmail:   b.PassengerEmail,
		PassengerPhone:   b.PassengerPhone,
		PassengerCount:   b.PassengerCount,
		Amount:           b.TotalAmount,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		Reason:           reason,
	}
	if b.PaymentReference != nil {
		event.PaymentReference = *b.PaymentReference
	}
	if b.Trip != nil {
		departure := b.Trip.DepartureTime
		event.DepartureTime = &departure
		if b.Trip.Route != nil {
			event.FromCity = b.Trip.Route.FromCity
			event.ToCity = b.Trip.Route.ToCity
		}
	}
	return event
}

// Transition is a compare-and-swap on the status pair. Optional fields are
// written only when set.
type Transition struct {
	From             StatePair
	To               StatePair
	GatewayReference *string
	SeatReserved     *bool
}

// ListFilter narrows booking listings
type ListFilter struct {
	Status        Status
	PaymentStatus PaymentStatus
	TripID        *uuid.UUID
	From, To      *time.Time
	Search        string
	Page          int
	Limit         int
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}
