package trips

import (
	"time"

	"engracedsmile/internal/fleet"

	"github.com/google/uuid"
)

// Trip is one scheduled departure. AvailableSeats is only written by the
// inventory ledger and by total-seat adjustments on update.
type Trip struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RouteID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"route_id"`
	VehicleID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	DriverID       *uuid.UUID `gorm:"type:uuid;index" json:"driver_id,omitempty"`
	DepartureTime  time.Time  `gorm:"not null;index" json:"departure_time"`
	ArrivalTime    time.Time  `gorm:"not null" json:"arrival_time"`
	Price          int64      `gorm:"not null;check:chk_trips_price,price > 0" json:"price"` // kobo
	TotalSeats     int        `gorm:"not null;check:chk_trips_total_seats,total_seats >= 0" json:"total_seats"`
	AvailableSeats int        `gorm:"not null;check:chk_trips_available_seats,available_seats >= 0 AND available_seats <= total_seats" json:"available_seats"`
	Status         TripStatus `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	Category       Category   `gorm:"type:varchar(20);not null;default:'regular'" json:"category"`

	IsPromo          bool       `gorm:"not null;default:false" json:"is_promo"`
	DiscountPercent  int        `gorm:"not null;default:0;check:chk_trips_discount,discount_percent >= 0 AND discount_percent <= 100" json:"discount_percent"`
	PromoDescription string     `gorm:"type:text" json:"promo_description,omitempty"`
	PromoValidUntil  *time.Time `json:"promo_valid_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Route   *fleet.Route   `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	Vehicle *fleet.Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Driver  *fleet.Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

func (Trip) TableName() string {
	return "trips"
}

// PromoActive reports whether the promotion should be shown at t
func (t *Trip) PromoActive(at time.Time) bool {
	if !t.IsPromo || t.DiscountPercent == 0 {
		return false
	}
	return t.PromoValidUntil == nil || at.Before(*t.PromoValidUntil)
}

// DisplayPrice applies an active promotion for listings. Bookings are
// always charged the plain Price.
func (t *Trip) DisplayPrice(at time.Time) int64 {
	if !t.PromoActive(at) {
		return t.Price
	}
	return t.Price - t.Price*int64(t.DiscountPercent)/100
}

// SearchQuery is the public trip search
type SearchQuery struct {
	FromCity   string
	ToCity     string
	Date       time.Time // any instant within the UTC day
	Passengers int
	Category   Category
	PromoOnly  bool
}

// ListFilter narrows the admin trip listing
type ListFilter struct {
	RouteID  *uuid.UUID
	Status   TripStatus
	Active   *bool
	From, To *time.Time
	Page     int
	Limit    int
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}
