package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"engracedsmile/internal/inventory"
	"engracedsmile/internal/notifications"
	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/trips"
	"engracedsmile/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TripReader loads the trip a booking is made against
type TripReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*trips.Trip, error)
}

// Requester identifies who is acting on a booking. A nil UserID is a guest.
type Requester struct {
	UserID *uuid.UUID
	Admin  bool
}

func (r Requester) canAccess(b *Booking) bool {
	return r.Admin || (r.UserID != nil && b.OwnedBy(*r.UserID))
}

type Service interface {
	Create(ctx context.Context, who Requester, req *CreateBookingRequest) (*Booking, error)
	Get(ctx context.Context, id uuid.UUID, who Requester) (*Booking, error)
	// GetByReference also admits guests who know the passenger email
	GetByReference(ctx context.Context, reference, email string, who Requester) (*Booking, error)
	ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Booking, int64, error)
	List(ctx context.Context, filter ListFilter) ([]Booking, int64, error)
	Cancel(ctx context.Context, id uuid.UUID, who Requester) (*Booking, error)
	Complete(ctx context.Context, id uuid.UUID) (*Booking, error)
	Ticket(ctx context.Context, id uuid.UUID, who Requester) ([]byte, string, error)
}

type service struct {
	repo        Repository
	trips       TripReader
	uow         UnitOfWork
	invalidator trips.Invalidator
	publisher   notifications.Publisher
	validate    *validator.Validate
	now         func() time.Time
}

func NewService(repo Repository, tripReader TripReader, uow UnitOfWork, invalidator trips.Invalidator, publisher notifications.Publisher) Service {
	if invalidator == nil {
		invalidator = trips.NewSearchCache(nil)
	}
	return &service{
		repo:        repo,
		trips:       tripReader,
		uow:         uow,
		invalidator: invalidator,
		publisher:   publisher,
		validate:    validator.New(),
		now:         time.Now,
	}
}

func (s *service) Create(ctx context.Context, who Requester, req *CreateBookingRequest) (*Booking, error) {
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, apperrors.NewValidation("trip_id", "must be a valid id")
	}

	booking := &Booking{
		UserID:         who.UserID,
		TripID:         tripID,
		PassengerName:  strings.TrimSpace(req.PassengerName),
		PassengerPhone: strings.TrimSpace(req.PassengerPhone),
		PassengerEmail: strings.ToLower(strings.TrimSpace(req.PassengerEmail)),
		PassengerCount: req.PassengerCount,
		SeatNumber:     strings.TrimSpace(req.SeatNumber),
	}
	if booking.PassengerCount == 0 {
		booking.PassengerCount = 1
	}
	if err := s.validatePassenger(booking); err != nil {
		return nil, err
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBookable(trip, booking.PassengerCount); err != nil {
		return nil, err
	}

	booking.TotalAmount = trip.Price * int64(booking.PassengerCount)
	if booking.TotalAmount <= 0 {
		return nil, apperrors.NewValidation("total_amount", "must be greater than zero")
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	booking.Trip = trip

	logger.GetDefault().LogBookingCreated(ctx, booking.ID.String(), booking.BookingReference, tripID.String())
	return booking, nil
}

func (s *service) validatePassenger(b *Booking) error {
	if b.PassengerName == "" {
		return apperrors.NewValidation("passenger_name", "is required")
	}
	if b.PassengerPhone == "" {
		return apperrors.NewValidation("passenger_phone", "is required")
	}
	if b.PassengerEmail == "" {
		return apperrors.NewValidation("passenger_email", "is required")
	}
	if err := s.validate.Var(b.PassengerEmail, "email"); err != nil {
		return apperrors.NewValidation("passenger_email", "must be a valid email address")
	}
	if b.PassengerCount < 1 {
		return apperrors.NewValidation("passenger_count", "must be at least 1")
	}
	return nil
}

// checkBookable is advisory. The ledger decides at confirmation time.
func (s *service) checkBookable(trip *trips.Trip, passengers int) error {
	if !trip.IsActive || !trip.Status.Bookable() {
		return apperrors.NewValidation("trip_id", "trip is not open for booking")
	}
	if !trip.DepartureTime.After(s.now()) {
		return apperrors.NewValidation("trip_id", "trip has already departed")
	}
	if trip.AvailableSeats < passengers {
		return fmt.Errorf("trip %s has %d seats left: %w", trip.ID, trip.AvailableSeats, apperrors.ErrInventoryExhausted)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, who Requester) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.canAccess(booking) {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}
	return booking, nil
}

func (s *service) GetByReference(ctx context.Context, reference, email string, who Requester) (*Booking, error) {
	booking, err := s.repo.FindByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		return nil, err
	}
	if who.canAccess(booking) {
		return booking, nil
	}
	if email != "" && strings.EqualFold(strings.TrimSpace(email), booking.PassengerEmail) {
		return booking, nil
	}
	return nil, fmt.Errorf("booking %s: %w", reference, apperrors.ErrNotFound)
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Booking, int64, error) {
	return s.repo.ListByUser(ctx, userID, filter)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Booking, int64, error) {
	return s.repo.List(ctx, filter)
}

// Cancel moves a pending or confirmed booking to cancelled, keeping its
// payment status. A held seat goes back to the trip in the same
// transaction. A paid booking also raises booking.refund_required so the
// refund is handled by an operator.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, who Requester) (*Booking, error) {
	booking, err := s.Get(ctx, id, who)
	if err != nil {
		return nil, err
	}
	if booking.Status == StatusCancelled {
		return booking, nil
	}
	if !booking.Status.CanBeCancelled() {
		return nil, apperrors.NewValidation("status", fmt.Sprintf("%s bookings cannot be cancelled", booking.Status))
	}

	from := booking.State()
	to := StatePair{Status: StatusCancelled, PaymentStatus: booking.PaymentStatus}
	held := booking.SeatReserved

	err = s.uow.Do(ctx, func(repo Repository, ledger inventory.Ledger) error {
		t := Transition{From: from, To: to}
		if held {
			released := false
			t.SeatReserved = &released
		}
		changed, err := repo.TransitionStatus(ctx, booking.ID, t)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("booking %s changed while cancelling: %w", booking.BookingReference, apperrors.ErrConflict)
		}
		if held {
			return ledger.RestoreAvailableSeats(ctx, booking.TripID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if held {
		s.invalidator.InvalidateTrip(ctx, booking.TripID)
	}
	booking.Status = to.Status
	booking.SeatReserved = false

	logger.GetDefault().LogBookingCancelled(ctx, booking.ID.String(), booking.TripID.String(), held)
	notifications.Emit(ctx, s.publisher, booking.Event(notifications.EventBookingCancelled, ""))
	if booking.PaymentStatus == PaymentPaid {
		notifications.Emit(ctx, s.publisher, booking.Event(notifications.EventBookingRefundRequired, "cancelled after payment"))
	}
	return booking, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*Booking, error) {
	changed, err := s.repo.TransitionStatus(ctx, id, Transition{From: StateConfirmed, To: StateCompleted})
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed && booking.State() != StateCompleted {
		return nil, apperrors.NewValidation("status", "only confirmed bookings can be completed")
	}
	return booking, nil
}

func (s *service) Ticket(ctx context.Context, id uuid.UUID, who Requester) ([]byte, string, error) {
	booking, err := s.Get(ctx, id, who)
	if err != nil {
		return nil, "", err
	}
	if booking.Status != StatusConfirmed && booking.Status != StatusCompleted {
		return nil, "", apperrors.NewValidation("status", "tickets are only issued for confirmed bookings")
	}
	return buildETicketPDF(booking, s.now())
}
