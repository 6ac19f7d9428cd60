package bookings

import (
	"time"

	"github.com/google/uuid"
)

// BookingResponse is the customer view of a booking
type BookingResponse struct {
	ID               uuid.UUID     `json:"id"`
	BookingReference string        `json:"booking_reference"`
	TripID           uuid.UUID     `json:"trip_id"`
	FromCity         string        `json:"from_city,omitempty"`
	ToCity           string        `json:"to_city,omitempty"`
	DepartureTime    *time.Time    `json:"departure_time,omitempty"`
	PassengerName    string        `json:"passenger_name"`
	PassengerPhone   string        `json:"passenger_phone"`
	PassengerEmail   string        `json:"passenger_email"`
	PassengerCount   int           `json:"passenger_count"`
	SeatNumber       string        `json:"seat_number,omitempty"`
	TotalAmount      int64         `json:"total_amount"`
	Status           Status        `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func ToResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:               b.ID,
		BookingReference: b.BookingReference,
		TripID:           b.TripID,
		PassengerName:    b.PassengerName,
		PassengerPhone:   b.PassengerPhone,
		PassengerEmail:   b.PassengerEmail,
		PassengerCount:   b.PassengerCount,
		SeatNumber:       b.SeatNumber,
		TotalAmount:      b.TotalAmount,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
	if b.PaymentReference != nil {
		resp.PaymentReference = *b.PaymentReference
	}
	if b.Trip != nil {
		departure := b.Trip.DepartureTime
		resp.DepartureTime = &departure
		if b.Trip.Route != nil {
			resp.FromCity = b.Trip.Route.FromCity
			resp.ToCity = b.Trip.Route.ToCity
		}
	}
	return resp
}

func toResponses(list []Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, ToResponse(&list[i]))
	}
	return out
}
