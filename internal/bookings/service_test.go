package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"engracedsmile/internal/fleet"
	"engracedsmile/internal/inventory"
	"engracedsmile/internal/notifications"
	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/trips"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockRepository struct {
	mock.Mock
	Repository
}

func (m *mockRepository) Create(ctx context.Context, b *Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = uuid.New()
		b.BookingReference = NewReference(time.Now())
		b.Status, b.PaymentStatus = StatusPending, PaymentPending
	}
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindByReference(ctx context.Context, ref string) (*Booking, error) {
	args := m.Called(ctx, ref)
	if b, ok := args.Get(0).(*Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) TransitionStatus(ctx context.Context, id uuid.UUID, t Transition) (bool, error) {
	args := m.Called(ctx, id, t)
	return args.Bool(0), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) DecrementAvailableSeats(ctx context.Context, tripID uuid.UUID) error {
	return m.Called(ctx, tripID).Error(0)
}

func (m *mockLedger) RestoreAvailableSeats(ctx context.Context, tripID uuid.UUID) error {
	return m.Called(ctx, tripID).Error(0)
}

func (m *mockLedger) WithTx(*gorm.DB) inventory.Ledger { return m }

// directUnitOfWork runs fn without a database
type directUnitOfWork struct {
	repo   Repository
	ledger inventory.Ledger
}

func (u directUnitOfWork) Do(_ context.Context, fn func(Repository, inventory.Ledger) error) error {
	return fn(u.repo, u.ledger)
}

type tripStub map[uuid.UUID]*trips.Trip

func (s tripStub) GetByID(_ context.Context, id uuid.UUID) (*trips.Trip, error) {
	if t, ok := s[id]; ok {
		return t, nil
	}
	return nil, apperrors.ErrNotFound
}

type recordingInvalidator struct{ trips []uuid.UUID }

func (r *recordingInvalidator) InvalidateTrip(_ context.Context, id uuid.UUID) {
	r.trips = append(r.trips, id)
}

type recordingPublisher struct{ events []notifications.BookingEvent }

func (p *recordingPublisher) Publish(_ context.Context, e notifications.BookingEvent) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc       Service
	repo      *mockRepository
	ledger    *mockLedger
	trips     tripStub
	inval     *recordingInvalidator
	publisher *recordingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(mockRepository),
		ledger:    new(mockLedger),
		trips:     tripStub{},
		inval:     &recordingInvalidator{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(f.repo, f.trips, directUnitOfWork{f.repo, f.ledger}, f.inval, f.publisher)
	return f
}

func (f *fixture) addTrip(mutate func(*trips.Trip)) *trips.Trip {
	t := &trips.Trip{
		ID:             uuid.New(),
		Price:          1500000,
		TotalSeats:     14,
		AvailableSeats: 5,
		Status:         trips.TripStatusScheduled,
		IsActive:       true,
		DepartureTime:  time.Now().Add(48 * time.Hour),
		Route:          &fleet.Route{FromCity: "Lagos", ToCity: "Port Harcourt"},
	}
	if mutate != nil {
		mutate(t)
	}
	f.trips[t.ID] = t
	return t
}

func bookingRequest(tripID uuid.UUID) *CreateBookingRequest {
	return &CreateBookingRequest{
		TripID:         tripID.String(),
		PassengerName:  " Ada Obi ",
		PassengerPhone: "08030000000",
		PassengerEmail: "Ada@Example.com",
	}
}

func TestCreate_PendingWithTripPrice(t *testing.T) {
	f := newFixture()
	trip := f.addTrip(nil)
	userID := uuid.New()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*bookings.Booking")).Return(nil)

	req := bookingRequest(trip.ID)
	req.PassengerCount = 2
	booking, err := f.svc.Create(context.Background(), Requester{UserID: &userID}, req)

	require.NoError(t, err)
	assert.Equal(t, int64(3000000), booking.TotalAmount)
	assert.Equal(t, "Ada Obi", booking.PassengerName)
	assert.Equal(t, "ada@example.com", booking.PassengerEmail)
	assert.Equal(t, StateAwaitingPayment, booking.State())
	assert.True(t, booking.OwnedBy(userID))
	assert.False(t, booking.SeatReserved)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		trip   func(*trips.Trip)
		req    func(*CreateBookingRequest)
		expect func(t *testing.T, err error)
	}{
		{
			name:   "blank name",
			req:    func(r *CreateBookingRequest) { r.PassengerName = "   " },
			expect: func(t *testing.T, err error) { assert.True(t, apperrors.IsValidation(err)) },
		},
		{
			name:   "malformed email",
			req:    func(r *CreateBookingRequest) { r.PassengerEmail = "not-an-email" },
			expect: func(t *testing.T, err error) { assert.True(t, apperrors.IsValidation(err)) },
		},
		{
			name:   "inactive trip",
			trip:   func(tr *trips.Trip) { tr.IsActive = false },
			expect: func(t *testing.T, err error) { assert.True(t, apperrors.IsValidation(err)) },
		},
		{
			name:   "trip underway",
			trip:   func(tr *trips.Trip) { tr.Status = trips.TripStatusInProgress },
			expect: func(t *testing.T, err error) { assert.True(t, apperrors.IsValidation(err)) },
		},
		{
			name:   "departed",
			trip:   func(tr *trips.Trip) { tr.DepartureTime = time.Now().Add(-time.Hour) },
			expect: func(t *testing.T, err error) { assert.True(t, apperrors.IsValidation(err)) },
		},
		{
			name: "not enough seats",
			trip: func(tr *trips.Trip) { tr.AvailableSeats = 1 },
			req:  func(r *CreateBookingRequest) { r.PassengerCount = 2 },
			expect: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, apperrors.ErrInventoryExhausted))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			trip := f.addTrip(tt.trip)
			req := bookingRequest(trip.ID)
			if tt.req != nil {
				tt.req(req)
			}
			_, err := f.svc.Create(context.Background(), Requester{}, req)
			tt.expect(t, err)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_UnknownTrip(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), Requester{}, bookingRequest(uuid.New()))
	assert.True(t, apperrors.IsNotFound(err))
}

func confirmedBooking(owner *uuid.UUID) *Booking {
	ref := "ES20261014A1B2C3D4"
	return &Booking{
		ID:               uuid.New(),
		BookingReference: ref,
		UserID:           owner,
		TripID:           uuid.New(),
		PassengerName:    "Ada Obi",
		PassengerEmail:   "ada@example.com",
		PassengerCount:   1,
		TotalAmount:      1500000,
		Status:           StatusConfirmed,
		PaymentStatus:    PaymentPaid,
		PaymentReference: &ref,
		SeatReserved:     true,
	}
}

func TestCancel_ConfirmedRestoresSeat(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	b := confirmedBooking(&owner)

	released := false
	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)
	f.repo.On("TransitionStatus", ctx, b.ID, Transition{
		From:         StateConfirmed,
		To:           StateCancelledPaid,
		SeatReserved: &released,
	}).Return(true, nil)
	f.ledger.On("RestoreAvailableSeats", ctx, b.TripID).Return(nil)

	got, err := f.svc.Cancel(ctx, b.ID, Requester{UserID: &owner})

	require.NoError(t, err)
	assert.Equal(t, StateCancelledPaid, got.State())
	assert.False(t, got.SeatReserved)
	f.ledger.AssertExpectations(t)
	assert.Equal(t, []uuid.UUID{b.TripID}, f.inval.trips)
	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, notifications.EventBookingCancelled, f.publisher.events[0].Type)
	assert.Equal(t, notifications.EventBookingRefundRequired, f.publisher.events[1].Type)
	assert.Equal(t, b.BookingReference, f.publisher.events[1].BookingReference)
}

func TestCancel_PendingKeepsInventory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	b := confirmedBooking(&owner)
	b.Status, b.PaymentStatus, b.SeatReserved = StatusPending, PaymentPending, false

	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)
	f.repo.On("TransitionStatus", ctx, b.ID, Transition{
		From: StateAwaitingPayment,
		To:   StatePair{StatusCancelled, PaymentPending},
	}).Return(true, nil)

	got, err := f.svc.Cancel(ctx, b.ID, Requester{UserID: &owner})

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, PaymentPending, got.PaymentStatus)
	f.ledger.AssertNotCalled(t, "RestoreAvailableSeats", mock.Anything, mock.Anything)
	assert.Empty(t, f.inval.trips)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, notifications.EventBookingCancelled, f.publisher.events[0].Type)
}

func TestCancel_AlreadyCancelledIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := confirmedBooking(nil)
	b.Status, b.SeatReserved = StatusCancelled, false
	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)

	got, err := f.svc.Cancel(ctx, b.ID, Requester{Admin: true})

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	f.repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.events)
}

func TestCancel_CompletedRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := confirmedBooking(nil)
	b.Status = StatusCompleted
	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)

	_, err := f.svc.Cancel(ctx, b.ID, Requester{Admin: true})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCancel_LostRace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := confirmedBooking(nil)
	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)
	f.repo.On("TransitionStatus", ctx, b.ID, mock.Anything).Return(false, nil)

	_, err := f.svc.Cancel(ctx, b.ID, Requester{Admin: true})

	assert.True(t, apperrors.IsConflict(err))
	f.ledger.AssertNotCalled(t, "RestoreAvailableSeats", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.events)
}

func TestGet_HidesOtherCustomersBookings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()
	b := confirmedBooking(&owner)
	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)

	_, err := f.svc.Get(ctx, b.ID, Requester{UserID: &stranger})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.Get(ctx, b.ID, Requester{Admin: true})
	assert.NoError(t, err)
}

func TestGetByReference_GuestNeedsEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := confirmedBooking(nil)
	f.repo.On("FindByReference", ctx, b.BookingReference).Return(b, nil)

	_, err := f.svc.GetByReference(ctx, "es20261014a1b2c3d4", "", Requester{})
	assert.True(t, apperrors.IsNotFound(err))

	got, err := f.svc.GetByReference(ctx, b.BookingReference, "ADA@example.com", Requester{})
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestComplete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := confirmedBooking(nil)
	completed := *b
	completed.Status = StatusCompleted

	f.repo.On("TransitionStatus", ctx, b.ID, Transition{From: StateConfirmed, To: StateCompleted}).Return(true, nil)
	f.repo.On("GetByID", ctx, b.ID).Return(&completed, nil)

	got, err := f.svc.Complete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, got.State())
}

func TestComplete_PendingRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := confirmedBooking(nil)
	b.Status, b.PaymentStatus = StatusPending, PaymentPending

	f.repo.On("TransitionStatus", ctx, b.ID, mock.Anything).Return(false, nil)
	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)

	_, err := f.svc.Complete(ctx, b.ID)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTicket_OnlyForConfirmed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := confirmedBooking(nil)
	b.Trip = &trips.Trip{
		DepartureTime: time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC),
		Route:         &fleet.Route{FromCity: "Lagos", ToCity: "Port Harcourt"},
		Vehicle:       &fleet.Vehicle{PlateNumber: "LAG-123-XY"},
	}
	f.repo.On("GetByID", ctx, b.ID).Return(b, nil)

	pdf, name, err := f.svc.Ticket(ctx, b.ID, Requester{Admin: true})
	require.NoError(t, err)
	assert.Equal(t, "ETICKET_ES20261014A1B2C3D4.pdf", name)
	assert.True(t, len(pdf) > 4 && string(pdf[:4]) == "%PDF")

	pending := confirmedBooking(nil)
	pending.Status, pending.PaymentStatus = StatusPending, PaymentPending
	f.repo.On("GetByID", ctx, pending.ID).Return(pending, nil)
	_, _, err = f.svc.Ticket(ctx, pending.ID, Requester{Admin: true})
	assert.True(t, apperrors.IsValidation(err))
}
