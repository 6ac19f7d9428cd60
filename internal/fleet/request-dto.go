package fleet

import "time"

type CreateRouteRequest struct {
	FromCity      string  `json:"from_city" validate:"required,min=2,max=100"`
	ToCity        string  `json:"to_city" validate:"required,min=2,max=100,nefield=FromCity"`
	DistanceKm    float64 `json:"distance_km" validate:"gte=0"`
	DurationHours float64 `json:"duration_hours" validate:"gte=0"`
	BasePrice     int64   `json:"base_price" validate:"gte=0"` // kobo
	Description   string  `json:"description" validate:"max=1000"`
}

type UpdateRouteRequest struct {
	FromCity      *string  `json:"from_city" validate:"omitempty,min=2,max=100"`
	ToCity        *string  `json:"to_city" validate:"omitempty,min=2,max=100"`
	DistanceKm    *float64 `json:"distance_km" validate:"omitempty,gte=0"`
	DurationHours *float64 `json:"duration_hours" validate:"omitempty,gte=0"`
	BasePrice     *int64   `json:"base_price" validate:"omitempty,gte=0"`
	Description   *string  `json:"description" validate:"omitempty,max=1000"`
	IsActive      *bool    `json:"is_active"`
}

type CreateVehicleRequest struct {
	PlateNumber string   `json:"plate_number" validate:"required,min=3,max=20"`
	Make        string   `json:"make" validate:"required,max=50"`
	Model       string   `json:"model" validate:"required,max=50"`
	Year        int      `json:"year" validate:"required,gte=1980,lte=2100"`
	Capacity    int      `json:"capacity" validate:"required,gt=0,lte=100"`
	VehicleType string   `json:"vehicle_type" validate:"required,oneof=bus minibus car"`
	Features    []string `json:"features" validate:"omitempty,dive,max=50"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Description string   `json:"description" validate:"max=1000"`
	DriverID    *string  `json:"driver_id" validate:"omitempty,uuid"`
}

type UpdateVehicleRequest struct {
	PlateNumber *string  `json:"plate_number" validate:"omitempty,min=3,max=20"`
	Make        *string  `json:"make" validate:"omitempty,max=50"`
	Model       *string  `json:"model" validate:"omitempty,max=50"`
	Year        *int     `json:"year" validate:"omitempty,gte=1980,lte=2100"`
	Capacity    *int     `json:"capacity" validate:"omitempty,gt=0,lte=100"`
	VehicleType *string  `json:"vehicle_type" validate:"omitempty,oneof=bus minibus car"`
	Features    []string `json:"features" validate:"omitempty,dive,max=50"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	DriverID    *string  `json:"driver_id" validate:"omitempty,uuid"`
	IsActive    *bool    `json:"is_active"`
}

type CreateDriverRequest struct {
	FullName      string    `json:"full_name" validate:"required,min=2,max=150"`
	LicenseNumber string    `json:"license_number" validate:"required,max=50"`
	LicenseExpiry time.Time `json:"license_expiry" validate:"required"`
	PhoneNumber   string    `json:"phone_number" validate:"required,min=7,max=20"`
	Rating        float64   `json:"rating" validate:"gte=0,lte=5"`
}

type UpdateDriverRequest struct {
	FullName      *string    `json:"full_name" validate:"omitempty,min=2,max=150"`
	LicenseNumber *string    `json:"license_number" validate:"omitempty,max=50"`
	LicenseExpiry *time.Time `json:"license_expiry"`
	PhoneNumber   *string    `json:"phone_number" validate:"omitempty,min=7,max=20"`
	Rating        *float64   `json:"rating" validate:"omitempty,gte=0,lte=5"`
	IsActive      *bool      `json:"is_active"`
}

type ToggleActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
