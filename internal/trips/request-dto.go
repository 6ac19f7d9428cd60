package trips

import "time"

type CreateTripRequest struct {
	RouteID       string    `json:"route_id" validate:"required,uuid"`
	VehicleID     string    `json:"vehicle_id" validate:"required,uuid"`
	DriverID      *string   `json:"driver_id" validate:"omitempty,uuid"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required"`
	Price         int64     `json:"price" validate:"gte=0"` // kobo; 0 falls back to the route base price
	TotalSeats    int       `json:"total_seats" validate:"gte=0"`
	Category      string    `json:"category" validate:"omitempty,oneof=regular premium luxury express overnight weekend holiday"`
}

type UpdateTripRequest struct {
	VehicleID     *string    `json:"vehicle_id" validate:"omitempty,uuid"`
	DriverID      *string    `json:"driver_id" validate:"omitempty,uuid"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Price         *int64     `json:"price" validate:"omitempty,gt=0"`
	TotalSeats    *int       `json:"total_seats" validate:"omitempty,gte=0"`
	Status        *string    `json:"status" validate:"omitempty,oneof=scheduled boarding in_progress completed cancelled"`
	Category      *string    `json:"category" validate:"omitempty,oneof=regular premium luxury express overnight weekend holiday"`
}

type PromotionRequest struct {
	DiscountPercent int        `json:"discount_percent" validate:"required,gt=0,lte=100"`
	Description     string     `json:"description" validate:"max=500"`
	ValidUntil      *time.Time `json:"valid_until"`
}

type SearchRequest struct {
	From       string `form:"from" validate:"required"`
	To         string `form:"to" validate:"required"`
	Date       string `form:"date" validate:"required,datetime=2006-01-02"`
	Passengers int    `form:"passengers" validate:"omitempty,gte=1,lte=20"`
	Category   string `form:"category" validate:"omitempty,oneof=regular premium luxury express overnight weekend holiday"`
	PromoOnly  bool   `form:"promo"`
}
