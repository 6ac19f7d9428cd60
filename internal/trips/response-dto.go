package trips

import (
	"time"

	"github.com/google/uuid"
)

// TripSummary is the public search view of a departure
type TripSummary struct {
	ID               uuid.UUID  `json:"id"`
	FromCity         string     `json:"from_city"`
	ToCity           string     `json:"to_city"`
	DepartureTime    time.Time  `json:"departure_time"`
	ArrivalTime      time.Time  `json:"arrival_time"`
	Price            int64      `json:"price"`
	DisplayPrice     int64      `json:"display_price"`
	AvailableSeats   int        `json:"available_seats"`
	TotalSeats       int        `json:"total_seats"`
	Category         Category   `json:"category"`
	IsPromo          bool       `json:"is_promo"`
	DiscountPercent  int        `json:"discount_percent,omitempty"`
	PromoDescription string     `json:"promo_description,omitempty"`
	PromoValidUntil  *time.Time `json:"promo_valid_until,omitempty"`
	VehicleType      string     `json:"vehicle_type,omitempty"`
	VehicleFeatures  []string   `json:"vehicle_features,omitempty"`
}

func toSummary(t *Trip, now time.Time) TripSummary {
	s := TripSummary{
		ID:             t.ID,
		DepartureTime:  t.DepartureTime,
		ArrivalTime:    t.ArrivalTime,
		Price:          t.Price,
		DisplayPrice:   t.DisplayPrice(now),
		AvailableSeats: t.AvailableSeats,
		TotalSeats:     t.TotalSeats,
		Category:       t.Category,
	}
	if t.PromoActive(now) {
		s.IsPromo = true
		s.DiscountPercent = t.DiscountPercent
		s.PromoDescription = t.PromoDescription
		s.PromoValidUntil = t.PromoValidUntil
	}
	if t.Route != nil {
		s.FromCity = t.Route.FromCity
		s.ToCity = t.Route.ToCity
	}
	if t.Vehicle != nil {
		s.VehicleType = string(t.Vehicle.VehicleType)
		s.VehicleFeatures = t.Vehicle.Features
	}
	return s
}
