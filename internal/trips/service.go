package trips

import (
	"context"
	"fmt"
	"time"

	"engracedsmile/internal/fleet"
	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/constants"
	"engracedsmile/pkg/cache"

	"github.com/google/uuid"
)

// FleetLookup resolves the records a trip points at
type FleetLookup interface {
	GetRoute(ctx context.Context, id uuid.UUID) (*fleet.Route, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*fleet.Driver, error)
}

type Service interface {
	Create(ctx context.Context, req *CreateTripRequest) (*Trip, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateTripRequest) (*Trip, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Trip, error)
	SetPromotion(ctx context.Context, id uuid.UUID, req *PromotionRequest) (*Trip, error)
	ClearPromotion(ctx context.Context, id uuid.UUID) (*Trip, error)
	Get(ctx context.Context, id uuid.UUID) (*Trip, error)
	List(ctx context.Context, filter ListFilter) ([]Trip, int64, error)
	Search(ctx context.Context, q SearchQuery) ([]TripSummary, error)
}

type service struct {
	repo        Repository
	fleet       FleetLookup
	cache       cache.Service
	invalidator Invalidator
	searchTTL   time.Duration
	now         func() time.Time
}

// NewService wires the trip service. c may be nil when Redis is unavailable,
// in which case searches always hit the database.
func NewService(repo Repository, fleetLookup FleetLookup, c cache.Service, searchTTL time.Duration) Service {
	if searchTTL <= 0 {
		searchTTL = constants.TTL_TRIPS_SEARCH
	}
	return &service{
		repo:        repo,
		fleet:       fleetLookup,
		cache:       c,
		invalidator: NewSearchCache(c),
		searchTTL:   searchTTL,
		now:         time.Now,
	}
}

func (s *service) Create(ctx context.Context, req *CreateTripRequest) (*Trip, error) {
	routeID, err := parseID("route_id", req.RouteID)
	if err != nil {
		return nil, err
	}
	vehicleID, err := parseID("vehicle_id", req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !req.ArrivalTime.After(req.DepartureTime) {
		return nil, apperrors.NewValidation("arrival_time", "must be after departure_time")
	}

	route, err := s.fleet.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !route.IsActive {
		return nil, apperrors.NewValidation("route_id", "route is not active")
	}
	vehicle, err := s.activeVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	trip := &Trip{
		RouteID:       routeID,
		VehicleID:     vehicleID,
		DepartureTime: req.DepartureTime.UTC(),
		ArrivalTime:   req.ArrivalTime.UTC(),
		Price:         req.Price,
		TotalSeats:    req.TotalSeats,
		Status:        TripStatusScheduled,
		IsActive:      true,
		Category:      CategoryRegular,
	}
	if trip.Price == 0 {
		trip.Price = route.BasePrice
	}
	if trip.Price <= 0 {
		return nil, apperrors.NewValidation("price", "must be greater than zero")
	}
	if trip.TotalSeats == 0 {
		trip.TotalSeats = vehicle.Capacity
	}
	if trip.TotalSeats > vehicle.Capacity {
		return nil, apperrors.NewValidation("total_seats", fmt.Sprintf("vehicle only seats %d", vehicle.Capacity))
	}
	trip.AvailableSeats = trip.TotalSeats
	if req.Category != "" {
		trip.Category = Category(req.Category)
	}

	if req.DriverID != nil {
		driverID, err := s.activeDriver(ctx, *req.DriverID)
		if err != nil {
			return nil, err
		}
		trip.DriverID = &driverID
	} else if vehicle.DriverID != nil {
		trip.DriverID = vehicle.DriverID
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	s.invalidator.InvalidateTrip(ctx, trip.ID)
	return trip, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *UpdateTripRequest) (*Trip, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	departure, arrival := current.DepartureTime, current.ArrivalTime
	if req.DepartureTime != nil {
		departure = req.DepartureTime.UTC()
		updates["departure_time"] = departure
	}
	if req.ArrivalTime != nil {
		arrival = req.ArrivalTime.UTC()
		updates["arrival_time"] = arrival
	}
	if !arrival.After(departure) {
		return nil, apperrors.NewValidation("arrival_time", "must be after departure_time")
	}

	capacity := 0
	if current.Vehicle != nil {
		capacity = current.Vehicle.Capacity
	}
	if req.VehicleID != nil {
		vehicleID, err := parseID("vehicle_id", *req.VehicleID)
		if err != nil {
			return nil, err
		}
		vehicle, err := s.activeVehicle(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		capacity = vehicle.Capacity
		updates["vehicle_id"] = vehicleID
	}
	if req.DriverID != nil {
		driverID, err := s.activeDriver(ctx, *req.DriverID)
		if err != nil {
			return nil, err
		}
		updates["driver_id"] = driverID
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Status != nil {
		updates["status"] = TripStatus(*req.Status)
	}
	if req.Category != nil {
		updates["category"] = Category(*req.Category)
	}

	totalSeats := current.TotalSeats
	if req.TotalSeats != nil {
		totalSeats = *req.TotalSeats
	}
	if capacity > 0 && totalSeats > capacity {
		return nil, apperrors.NewValidation("total_seats", fmt.Sprintf("vehicle only seats %d", capacity))
	}

	var resize *int
	if totalSeats != current.TotalSeats {
		resize = &totalSeats
	}
	if len(updates) > 0 || resize != nil {
		if err := s.repo.Revise(ctx, id, updates, resize); err != nil {
			return nil, err
		}
	}

	s.invalidator.InvalidateTrip(ctx, id)
	return s.repo.GetByID(ctx, id)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*Trip, error) {
	return s.apply(ctx, id, map[string]interface{}{"is_active": false})
}

func (s *service) SetPromotion(ctx context.Context, id uuid.UUID, req *PromotionRequest) (*Trip, error) {
	if req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		return nil, apperrors.NewValidation("discount_percent", "must be between 1 and 100")
	}
	if req.ValidUntil != nil && !req.ValidUntil.After(s.now()) {
		return nil, apperrors.NewValidation("valid_until", "must be in the future")
	}
	return s.apply(ctx, id, map[string]interface{}{
		"is_promo":          true,
		"discount_percent":  req.DiscountPercent,
		"promo_description": req.Description,
		"promo_valid_until": req.ValidUntil,
	})
}

func (s *service) ClearPromotion(ctx context.Context, id uuid.UUID) (*Trip, error) {
	return s.apply(ctx, id, map[string]interface{}{
		"is_promo":          false,
		"discount_percent":  0,
		"promo_description": "",
		"promo_valid_until": nil,
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Trip, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}
	var trip Trip
	err := s.cache.GetOrSet(ctx, constants.BuildTripDetailKey(id.String()), constants.TTL_TRIP_DETAIL, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	}, &trip)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Trip, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Search(ctx context.Context, q SearchQuery) ([]TripSummary, error) {
	if q.FromCity == "" || q.ToCity == "" {
		return nil, apperrors.NewValidation("from", "origin and destination are required")
	}
	if q.Passengers < 1 {
		q.Passengers = 1
	}

	fetch := func() (interface{}, error) {
		found, err := s.repo.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		now := s.now()
		summaries := make([]TripSummary, 0, len(found))
		for i := range found {
			summaries = append(summaries, toSummary(&found[i], now))
		}
		return summaries, nil
	}

	if s.cache == nil {
		out, err := fetch()
		if err != nil {
			return nil, err
		}
		return out.([]TripSummary), nil
	}

	key := constants.BuildTripSearchKey(q.FromCity, q.ToCity, q.Date.UTC().Format("2006-01-02"), q.Passengers, string(q.Category), q.PromoOnly)
	var summaries []TripSummary
	if err := s.cache.GetOrSet(ctx, key, s.searchTTL, fetch, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *service) apply(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Trip, error) {
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidator.InvalidateTrip(ctx, id)
	return s.repo.GetByID(ctx, id)
}

func (s *service) activeVehicle(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	vehicle, err := s.fleet.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !vehicle.IsActive {
		return nil, apperrors.NewValidation("vehicle_id", "vehicle is not active")
	}
	return vehicle, nil
}

func (s *service) activeDriver(ctx context.Context, raw string) (uuid.UUID, error) {
	driverID, err := parseID("driver_id", raw)
	if err != nil {
		return uuid.Nil, err
	}
	driver, err := s.fleet.GetDriver(ctx, driverID)
	if err != nil {
		return uuid.Nil, err
	}
	if !driver.IsActive {
		return uuid.Nil, apperrors.NewValidation("driver_id", "driver is not active")
	}
	return driverID, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidation(field, "must be a valid id")
	}
	return id, nil
}
