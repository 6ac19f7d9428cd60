package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"engracedsmile/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Service interface {
	CreateRoute(ctx context.Context, req *CreateRouteRequest) (*Route, error)
	UpdateRoute(ctx context.Context, id uuid.UUID, req *UpdateRouteRequest) (*Route, error)
	GetRoute(ctx context.Context, id uuid.UUID) (*Route, error)
	ListRoutes(ctx context.Context, filter ListFilter) ([]Route, int64, error)
	SetRouteActive(ctx context.Context, id uuid.UUID, active bool) (*Route, error)
	DeleteRoute(ctx context.Context, id uuid.UUID) error

	CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*Vehicle, error)
	UpdateVehicle(ctx context.Context, id uuid.UUID, req *UpdateVehicleRequest) (*Vehicle, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	ListVehicles(ctx context.Context, filter ListFilter) ([]Vehicle, int64, error)
	DeleteVehicle(ctx context.Context, id uuid.UUID) error

	CreateDriver(ctx context.Context, req *CreateDriverRequest) (*Driver, error)
	UpdateDriver(ctx context.Context, id uuid.UUID, req *UpdateDriverRequest) (*Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error)
	ListDrivers(ctx context.Context, filter ListFilter) ([]Driver, int64, error)
	SetDriverActive(ctx context.Context, id uuid.UUID, active bool) (*Driver, error)
	DeleteDriver(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateRoute(ctx context.Context, req *CreateRouteRequest) (*Route, error) {
	route := &Route{
		FromCity:      strings.TrimSpace(req.FromCity),
		ToCity:        strings.TrimSpace(req.ToCity),
		DistanceKm:    req.DistanceKm,
		DurationHours: req.DurationHours,
		BasePrice:     req.BasePrice,
		IsActive:      true,
		Description:   req.Description,
	}
	if strings.EqualFold(route.FromCity, route.ToCity) {
		return nil, apperrors.NewValidation("to_city", "must differ from from_city")
	}
	if err := s.repo.CreateRoute(ctx, route); err != nil {
		return nil, translate(err, "route")
	}
	return route, nil
}

func (s *service) UpdateRoute(ctx context.Context, id uuid.UUID, req *UpdateRouteRequest) (*Route, error) {
	updates := map[string]interface{}{}
	setIf(updates, "from_city", trimmed(req.FromCity))
	setIf(updates, "to_city", trimmed(req.ToCity))
	setIf(updates, "distance_km", req.DistanceKm)
	setIf(updates, "duration_hours", req.DurationHours)
	setIf(updates, "base_price", req.BasePrice)
	setIf(updates, "description", req.Description)
	setIf(updates, "is_active", req.IsActive)

	route, err := s.repo.UpdateRoute(ctx, id, updates)
	if err != nil {
		return nil, translate(err, "route")
	}
	return route, nil
}

func (s *service) GetRoute(ctx context.Context, id uuid.UUID) (*Route, error) {
	return s.repo.GetRoute(ctx, id)
}

func (s *service) ListRoutes(ctx context.Context, filter ListFilter) ([]Route, int64, error) {
	return s.repo.ListRoutes(ctx, filter)
}

func (s *service) SetRouteActive(ctx context.Context, id uuid.UUID, active bool) (*Route, error) {
	return s.repo.UpdateRoute(ctx, id, map[string]interface{}{"is_active": active})
}

func (s *service) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRoute(ctx, id)
}

func (s *service) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*Vehicle, error) {
	vehicleType := VehicleType(req.VehicleType)
	if !vehicleType.IsValid() {
		return nil, apperrors.NewValidation("vehicle_type", "must be bus, minibus or car")
	}

	vehicle := &Vehicle{
		PlateNumber: strings.ToUpper(strings.TrimSpace(req.PlateNumber)),
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Capacity:    req.Capacity,
		VehicleType: vehicleType,
		IsActive:    true,
		Features:    pq.StringArray(req.Features),
		Images:      pq.StringArray(req.Images),
		Description: req.Description,
	}
	if req.DriverID != nil {
		driverID, err := s.activeDriver(ctx, *req.DriverID)
		if err != nil {
			return nil, err
		}
		vehicle.DriverID = &driverID
	}

	if err := s.repo.CreateVehicle(ctx, vehicle); err != nil {
		return nil, translate(err, "vehicle")
	}
	return vehicle, nil
}

func (s *service) UpdateVehicle(ctx context.Context, id uuid.UUID, req *UpdateVehicleRequest) (*Vehicle, error) {
	updates := map[string]interface{}{}
	if req.PlateNumber != nil {
		updates["plate_number"] = strings.ToUpper(strings.TrimSpace(*req.PlateNumber))
	}
	setIf(updates, "make", req.Make)
	setIf(updates, "model", req.Model)
	setIf(updates, "year", req.Year)
	setIf(updates, "capacity", req.Capacity)
	setIf(updates, "vehicle_type", req.VehicleType)
	setIf(updates, "description", req.Description)
	setIf(updates, "is_active", req.IsActive)
	if req.Features != nil {
		updates["features"] = pq.StringArray(req.Features)
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.DriverID != nil {
		if *req.DriverID == "" {
			updates["driver_id"] = nil
		} else {
			driverID, err := s.activeDriver(ctx, *req.DriverID)
			if err != nil {
				return nil, err
			}
			updates["driver_id"] = driverID
		}
	}

	vehicle, err := s.repo.UpdateVehicle(ctx, id, updates)
	if err != nil {
		return nil, translate(err, "vehicle")
	}
	return vehicle, nil
}

func (s *service) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

func (s *service) ListVehicles(ctx context.Context, filter ListFilter) ([]Vehicle, int64, error) {
	return s.repo.ListVehicles(ctx, filter)
}

func (s *service) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteVehicle(ctx, id)
}

func (s *service) CreateDriver(ctx context.Context, req *CreateDriverRequest) (*Driver, error) {
	driver := &Driver{
		FullName:      strings.TrimSpace(req.FullName),
		LicenseNumber: strings.ToUpper(strings.TrimSpace(req.LicenseNumber)),
		LicenseExpiry: req.LicenseExpiry,
		PhoneNumber:   req.PhoneNumber,
		IsActive:      true,
		Rating:        req.Rating,
	}
	if err := s.repo.CreateDriver(ctx, driver); err != nil {
		return nil, translate(err, "driver")
	}
	return driver, nil
}

func (s *service) UpdateDriver(ctx context.Context, id uuid.UUID, req *UpdateDriverRequest) (*Driver, error) {
	updates := map[string]interface{}{}
	setIf(updates, "full_name", trimmed(req.FullName))
	if req.LicenseNumber != nil {
		updates["license_number"] = strings.ToUpper(strings.TrimSpace(*req.LicenseNumber))
	}
	setIf(updates, "license_expiry", req.LicenseExpiry)
	setIf(updates, "phone_number", req.PhoneNumber)
	setIf(updates, "rating", req.Rating)
	setIf(updates, "is_active", req.IsActive)

	driver, err := s.repo.UpdateDriver(ctx, id, updates)
	if err != nil {
		return nil, translate(err, "driver")
	}
	return driver, nil
}

func (s *service) GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error) {
	return s.repo.GetDriver(ctx, id)
}

func (s *service) ListDrivers(ctx context.Context, filter ListFilter) ([]Driver, int64, error) {
	return s.repo.ListDrivers(ctx, filter)
}

func (s *service) SetDriverActive(ctx context.Context, id uuid.UUID, active bool) (*Driver, error) {
	return s.repo.UpdateDriver(ctx, id, map[string]interface{}{"is_active": active})
}

func (s *service) DeleteDriver(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDriver(ctx, id)
}

func (s *service) activeDriver(ctx context.Context, raw string) (uuid.UUID, error) {
	driverID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidation("driver_id", "must be a valid id")
	}
	driver, err := s.repo.GetDriver(ctx, driverID)
	if err != nil {
		return uuid.Nil, err
	}
	if !driver.IsActive {
		return uuid.Nil, apperrors.NewValidation("driver_id", "driver is not active")
	}
	return driverID, nil
}

// translate maps unique-index violations to ErrConflict
func translate(err error, kind string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s already exists: %w", kind, apperrors.ErrConflict)
	}
	return err
}

func setIf[T any](updates map[string]interface{}, column string, value *T) {
	if value != nil {
		updates[column] = *value
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
