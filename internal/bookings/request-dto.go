package bookings

type CreateBookingRequest struct {
	TripID         string `json:"trip_id" validate:"required,uuid"`
	PassengerName  string `json:"passenger_name" validate:"required,max=255"`
	PassengerPhone string `json:"passenger_phone" validate:"required,max=20"`
	PassengerEmail string `json:"passenger_email" validate:"required,email"`
	PassengerCount int    `json:"passenger_count" validate:"omitempty,gte=1,lte=20"`
	SeatNumber     string `json:"seat_number" validate:"omitempty,max=10"`
}
