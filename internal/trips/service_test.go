package trips

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"engracedsmile/internal/fleet"
	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/constants"
	"engracedsmile/pkg/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
	Repository
}

func (m *mockRepository) Create(ctx context.Context, trip *Trip) error {
	return m.Called(ctx, trip).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*Trip); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *mockRepository) ResizeSeats(ctx context.Context, id uuid.UUID, totalSeats int) error {
	return m.Called(ctx, id, totalSeats).Error(0)
}

func (m *mockRepository) Revise(ctx context.Context, id uuid.UUID, updates map[string]interface{}, totalSeats *int) error {
	return m.Called(ctx, id, updates, totalSeats).Error(0)
}

func (m *mockRepository) Search(ctx context.Context, q SearchQuery) ([]Trip, error) {
	args := m.Called(ctx, q)
	if t, ok := args.Get(0).([]Trip); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFleet struct {
	mock.Mock
}

func (m *mockFleet) GetRoute(ctx context.Context, id uuid.UUID) (*fleet.Route, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*fleet.Route); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFleet) GetVehicle(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*fleet.Vehicle); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFleet) GetDriver(ctx context.Context, id uuid.UUID) (*fleet.Driver, error) {
	args := m.Called(ctx, id)
	if d, ok := args.Get(0).(*fleet.Driver); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTripRequest(routeID, vehicleID uuid.UUID) *CreateTripRequest {
	departure := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)
	return &CreateTripRequest{
		RouteID:       routeID.String(),
		VehicleID:     vehicleID.String(),
		DepartureTime: departure,
		ArrivalTime:   departure.Add(8 * time.Hour),
	}
}

func TestCreate_DefaultsFromRouteAndVehicle(t *testing.T) {
	repo, fl := new(mockRepository), new(mockFleet)
	svc := NewService(repo, fl, nil, 0)
	ctx := context.Background()

	routeID, vehicleID, driverID := uuid.New(), uuid.New(), uuid.New()
	fl.On("GetRoute", ctx, routeID).Return(&fleet.Route{ID: routeID, IsActive: true, BasePrice: 1500000}, nil)
	fl.On("GetVehicle", ctx, vehicleID).Return(&fleet.Vehicle{ID: vehicleID, IsActive: true, Capacity: 14, DriverID: &driverID}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*trips.Trip")).Return(nil)

	trip, err := svc.Create(ctx, newTripRequest(routeID, vehicleID))

	require.NoError(t, err)
	assert.Equal(t, int64(1500000), trip.Price)
	assert.Equal(t, 14, trip.TotalSeats)
	assert.Equal(t, 14, trip.AvailableSeats)
	assert.Equal(t, CategoryRegular, trip.Category)
	assert.Equal(t, TripStatusScheduled, trip.Status)
	require.NotNil(t, trip.DriverID)
	assert.Equal(t, driverID, *trip.DriverID)
	repo.AssertExpectations(t)
}

func TestCreate_Rejections(t *testing.T) {
	routeID, vehicleID := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		route   *fleet.Route
		vehicle *fleet.Vehicle
		mutate  func(*CreateTripRequest)
		field   string
	}{
		{
			name:    "inactive route",
			route:   &fleet.Route{ID: routeID, IsActive: false, BasePrice: 100},
			vehicle: &fleet.Vehicle{ID: vehicleID, IsActive: true, Capacity: 14},
			field:   "route_id",
		},
		{
			name:    "inactive vehicle",
			route:   &fleet.Route{ID: routeID, IsActive: true, BasePrice: 100},
			vehicle: &fleet.Vehicle{ID: vehicleID, IsActive: false, Capacity: 14},
			field:   "vehicle_id",
		},
		{
			name:    "more seats than the vehicle has",
			route:   &fleet.Route{ID: routeID, IsActive: true, BasePrice: 100},
			vehicle: &fleet.Vehicle{ID: vehicleID, IsActive: true, Capacity: 14},
			mutate:  func(r *CreateTripRequest) { r.TotalSeats = 15 },
			field:   "total_seats",
		},
		{
			name:    "no price anywhere",
			route:   &fleet.Route{ID: routeID, IsActive: true},
			vehicle: &fleet.Vehicle{ID: vehicleID, IsActive: true, Capacity: 14},
			field:   "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, fl := new(mockRepository), new(mockFleet)
			svc := NewService(repo, fl, nil, 0)
			ctx := context.Background()
			fl.On("GetRoute", ctx, routeID).Return(tt.route, nil)
			fl.On("GetVehicle", ctx, vehicleID).Return(tt.vehicle, nil)

			req := newTripRequest(routeID, vehicleID)
			if tt.mutate != nil {
				tt.mutate(req)
			}
			_, err := svc.Create(ctx, req)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_ArrivalBeforeDeparture(t *testing.T) {
	repo, fl := new(mockRepository), new(mockFleet)
	svc := NewService(repo, fl, nil, 0)

	req := newTripRequest(uuid.New(), uuid.New())
	req.ArrivalTime = req.DepartureTime.Add(-time.Hour)

	_, err := svc.Create(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))
	fl.AssertNotCalled(t, "GetRoute", mock.Anything, mock.Anything)
}

func seatsArg(n int) interface{} {
	return mock.MatchedBy(func(p *int) bool { return p != nil && *p == n })
}

func TestUpdate_ResizesSeats(t *testing.T) {
	repo, fl := new(mockRepository), new(mockFleet)
	svc := NewService(repo, fl, nil, 0)
	ctx := context.Background()

	id := uuid.New()
	departure := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)
	current := &Trip{
		ID: id, TotalSeats: 10, AvailableSeats: 4,
		DepartureTime: departure, ArrivalTime: departure.Add(6 * time.Hour),
		Vehicle: &fleet.Vehicle{Capacity: 14},
	}
	repo.On("GetByID", ctx, id).Return(current, nil)
	repo.On("Revise", ctx, id, map[string]interface{}{}, seatsArg(12)).Return(nil)

	seats := 12
	_, err := svc.Update(ctx, id, &UpdateTripRequest{TotalSeats: &seats})

	require.NoError(t, err)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ResizeSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_RefusedResizeReturnsError(t *testing.T) {
	repo, fl := new(mockRepository), new(mockFleet)
	svc := NewService(repo, fl, nil, 0)
	ctx := context.Background()

	id := uuid.New()
	departure := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)
	repo.On("GetByID", ctx, id).Return(&Trip{
		ID: id, TotalSeats: 10, AvailableSeats: 1,
		DepartureTime: departure, ArrivalTime: departure.Add(6 * time.Hour),
	}, nil).Once()
	refused := apperrors.NewValidation("total_seats", "cannot be lower than the number of seats already sold")
	repo.On("Revise", ctx, id, map[string]interface{}{"price": int64(999)}, seatsArg(2)).Return(refused)

	price, seats := int64(999), 2
	_, err := svc.Update(ctx, id, &UpdateTripRequest{Price: &price, TotalSeats: &seats})

	assert.True(t, apperrors.IsValidation(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_SeatsAboveCapacity(t *testing.T) {
	repo, fl := new(mockRepository), new(mockFleet)
	svc := NewService(repo, fl, nil, 0)
	ctx := context.Background()

	id := uuid.New()
	departure := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)
	repo.On("GetByID", ctx, id).Return(&Trip{
		ID: id, TotalSeats: 10,
		DepartureTime: departure, ArrivalTime: departure.Add(time.Hour),
		Vehicle: &fleet.Vehicle{Capacity: 14},
	}, nil)

	seats := 20
	_, err := svc.Update(ctx, id, &UpdateTripRequest{TotalSeats: &seats})

	assert.True(t, apperrors.IsValidation(err))
	repo.AssertNotCalled(t, "ResizeSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetPromotion_Validation(t *testing.T) {
	repo, fl := new(mockRepository), new(mockFleet)
	svc := NewService(repo, fl, nil, 0)
	ctx := context.Background()

	_, err := svc.SetPromotion(ctx, uuid.New(), &PromotionRequest{DiscountPercent: 0})
	assert.True(t, apperrors.IsValidation(err))

	past := time.Now().Add(-time.Hour)
	_, err = svc.SetPromotion(ctx, uuid.New(), &PromotionRequest{DiscountPercent: 10, ValidUntil: &past})
	assert.True(t, apperrors.IsValidation(err))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_CachesSummaries(t *testing.T) {
	repo, fl := new(mockRepository), new(mockFleet)
	client, redisMock := redismock.NewClientMock()
	svc := NewService(repo, fl, cache.NewService(client), time.Minute)
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }
	ctx := context.Background()

	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	q := SearchQuery{FromCity: "Lagos", ToCity: "Port Harcourt", Date: day, Passengers: 2}
	found := []Trip{{
		ID: uuid.New(), Price: 1500000, TotalSeats: 14, AvailableSeats: 5,
		DepartureTime: day.Add(7 * time.Hour), ArrivalTime: day.Add(15 * time.Hour),
		Route: &fleet.Route{FromCity: "Lagos", ToCity: "Port Harcourt"},
	}}
	repo.On("Search", ctx, q).Return(found, nil).Once()

	want := []TripSummary{toSummary(&found[0], now)}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	key := constants.BuildTripSearchKey("Lagos", "Port Harcourt", "2026-10-20", 2, "", false)
	redisMock.ExpectGet(key).RedisNil()
	redisMock.ExpectSet(key, raw, time.Minute).SetVal("OK")
	redisMock.ExpectGet(key).SetVal(string(raw))

	first, err := svc.Search(ctx, q)
	require.NoError(t, err)
	second, err := svc.Search(ctx, q)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, "Lagos", first[0].FromCity)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "Search", 1)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestSearch_RequiresCities(t *testing.T) {
	svc := NewService(new(mockRepository), new(mockFleet), nil, 0)
	_, err := svc.Search(context.Background(), SearchQuery{FromCity: "Lagos"})
	assert.True(t, apperrors.IsValidation(err))
}
