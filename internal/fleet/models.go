package fleet

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// VehicleType is the body class of a fleet vehicle
type VehicleType string

const (
	VehicleBus     VehicleType = "bus"
	VehicleMinibus VehicleType = "minibus"
	VehicleCar     VehicleType = "car"
)

func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleBus, VehicleMinibus, VehicleCar:
		return true
	}
	return false
}

// Route is a city pair the company operates
type Route struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FromCity      string    `gorm:"type:varchar(100);not null;index:idx_routes_cities" json:"from_city"`
	ToCity        string    `gorm:"type:varchar(100);not null;index:idx_routes_cities" json:"to_city"`
	DistanceKm    float64   `gorm:"not null;default:0" json:"distance_km"`
	DurationHours float64   `gorm:"not null;default:0" json:"duration_hours"`
	BasePrice     int64     `gorm:"not null;default:0;check:base_price >= 0" json:"base_price"` // kobo
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Route) TableName() string {
	return "routes"
}

// Driver is a licensed operator who can be assigned to trips
type Driver struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FullName      string    `gorm:"type:varchar(150);not null" json:"full_name"`
	LicenseNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	LicenseExpiry time.Time `gorm:"type:date;not null" json:"license_expiry"`
	PhoneNumber   string    `gorm:"type:varchar(20);not null" json:"phone_number"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	Rating        float64   `gorm:"not null;default:0;check:rating >= 0 AND rating <= 5" json:"rating"`
	TotalTrips    int       `gorm:"not null;default:0" json:"total_trips"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}

// Vehicle is a bus or car in the fleet
type Vehicle struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlateNumber string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"plate_number"`
	Make        string         `gorm:"type:varchar(50);not null" json:"make"`
	Model       string         `gorm:"type:varchar(50);not null" json:"model"`
	Year        int            `gorm:"not null" json:"year"`
	Capacity    int            `gorm:"not null;check:capacity > 0" json:"capacity"`
	VehicleType VehicleType    `gorm:"type:varchar(10);not null;default:'bus'" json:"vehicle_type"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	Features    pq.StringArray `gorm:"type:text[]" json:"features"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	DriverID    *uuid.UUID     `gorm:"type:uuid;index" json:"driver_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Driver *Driver `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// ListFilter narrows admin listings
type ListFilter struct {
	Active *bool
	Search string
	Page   int
	Limit  int
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f ListFilter) offset() int {
	return (f.Page - 1) * f.Limit
}
