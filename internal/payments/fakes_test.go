package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"engracedsmile/internal/bookings"
	"engracedsmile/internal/inventory"
	"engracedsmile/internal/notifications"
	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/config"
	"engracedsmile/pkg/paystack"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is an in-memory bookings table plus trip seat counters. Do
// serialises transactions and rolls back on error like the database would.
type memStore struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]bookings.Booking
	seats      map[uuid.UUID]int
	totals     map[uuid.UUID]int
	decrements int
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[uuid.UUID]bookings.Booking{},
		seats:    map[uuid.UUID]int{},
		totals:   map[uuid.UUID]int{},
	}
}

func (s *memStore) addTrip(available, total int) uuid.UUID {
	id := uuid.New()
	s.seats[id] = available
	s.totals[id] = total
	return id
}

func (s *memStore) addBooking(tripID uuid.UUID, state bookings.StatePair, amount int64) bookings.Booking {
	b := bookings.Booking{
		ID:               uuid.New(),
		BookingReference: bookings.NewReference(time.Now()),
		TripID:           tripID,
		PassengerName:    "Ada Obi",
		PassengerPhone:   "08030000000",
		PassengerEmail:   "ada@example.com",
		PassengerCount:   1,
		TotalAmount:      amount,
		Status:           state.Status,
		PaymentStatus:    state.PaymentStatus,
	}
	ref := b.BookingReference
	b.PaymentReference = &ref
	s.bookings[b.ID] = b
	return b
}

func (s *memStore) booking(id uuid.UUID) bookings.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

// state returns the stored booking's state pair. State has a pointer
// receiver, so the copy returned by booking must be addressable first.
func (s *memStore) state(id uuid.UUID) bookings.StatePair {
	b := s.booking(id)
	return b.State()
}

func (s *memStore) available(tripID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[tripID]
}

func (s *memStore) Do(_ context.Context, fn func(bookings.Repository, inventory.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	savedBookings := make(map[uuid.UUID]bookings.Booking, len(s.bookings))
	for k, v := range s.bookings {
		savedBookings[k] = v
	}
	savedSeats := make(map[uuid.UUID]int, len(s.seats))
	for k, v := range s.seats {
		savedSeats[k] = v
	}
	savedDecrements := s.decrements

	if err := fn(&memRepo{s: s, held: true}, &memLedger{s: s, held: true}); err != nil {
		s.bookings, s.seats, s.decrements = savedBookings, savedSeats, savedDecrements
		return err
	}
	return nil
}

type memRepo struct {
	bookings.Repository
	s    *memStore
	held bool
}

func (r *memRepo) lock() func() {
	if r.held {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*bookings.Booking, error) {
	defer r.lock()()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}
	return &b, nil
}

func (r *memRepo) find(match func(bookings.Booking) bool) (*bookings.Booking, error) {
	defer r.lock()()
	for _, b := range r.s.bookings {
		if match(b) {
			b := b
			return &b, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memRepo) FindByReference(_ context.Context, reference string) (*bookings.Booking, error) {
	return r.find(func(b bookings.Booking) bool { return b.BookingReference == reference })
}

func (r *memRepo) FindByGatewayReference(_ context.Context, reference string) (*bookings.Booking, error) {
	return r.find(func(b bookings.Booking) bool {
		return b.PaymentReference != nil && *b.PaymentReference == reference
	})
}

func (r *memRepo) TransitionStatus(_ context.Context, id uuid.UUID, t bookings.Transition) (bool, error) {
	defer r.lock()()
	b, ok := r.s.bookings[id]
	if !ok || b.State() != t.From {
		return false, nil
	}
	if t.GatewayReference != nil {
		for otherID, other := range r.s.bookings {
			if otherID != id && other.PaymentReference != nil && *other.PaymentReference == *t.GatewayReference {
				return false, apperrors.ErrConflict
			}
		}
		ref := *t.GatewayReference
		b.PaymentReference = &ref
	}
	if t.SeatReserved != nil {
		b.SeatReserved = *t.SeatReserved
	}
	b.Status, b.PaymentStatus = t.To.Status, t.To.PaymentStatus
	r.s.bookings[id] = b
	return true, nil
}

type memLedger struct {
	s    *memStore
	held bool
}

func (l *memLedger) lock() func() {
	if l.held {
		return func() {}
	}
	l.s.mu.Lock()
	return l.s.mu.Unlock
}

func (l *memLedger) DecrementAvailableSeats(_ context.Context, tripID uuid.UUID) error {
	defer l.lock()()
	seats, ok := l.s.seats[tripID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if seats == 0 {
		return fmt.Errorf("trip %s: %w", tripID, apperrors.ErrInventoryExhausted)
	}
	l.s.seats[tripID] = seats - 1
	l.s.decrements++
	return nil
}

func (l *memLedger) RestoreAvailableSeats(_ context.Context, tripID uuid.UUID) error {
	defer l.lock()()
	if l.s.seats[tripID] < l.s.totals[tripID] {
		l.s.seats[tripID]++
	}
	return nil
}

func (l *memLedger) WithTx(*gorm.DB) inventory.Ledger { return l }

// fakeGateway signs and checks webhooks with the real client and scripts
// the network calls
type fakeGateway struct {
	*paystack.Client

	mu          sync.Mutex
	verify      func(reference string) (*paystack.VerifyResult, error)
	refundErr   error
	refunds     []string
	verifyCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		Client: paystack.NewClient(config.PaystackConfig{SecretKey: "sk_test_secret", PublicKey: "pk_test_public"}),
	}
}

func (g *fakeGateway) succeedWith(amount int64) {
	g.verify = func(string) (*paystack.VerifyResult, error) {
		return &paystack.VerifyResult{Succeeded: true, Status: "success", Amount: amount}, nil
	}
}

func (g *fakeGateway) VerifyTransaction(_ context.Context, reference string) (*paystack.VerifyResult, error) {
	g.mu.Lock()
	g.verifyCalls++
	verify := g.verify
	g.mu.Unlock()
	return verify(reference)
}

func (g *fakeGateway) InitiateRefund(_ context.Context, reference string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunds = append(g.refunds, reference)
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []notifications.BookingEvent
}

func (l *eventLog) Publish(_ context.Context, e notifications.BookingEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) Close() error { return nil }

func (l *eventLog) types() []notifications.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]notifications.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

type tripInvalidations struct {
	mu    sync.Mutex
	trips []uuid.UUID
}

func (r *tripInvalidations) InvalidateTrip(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips = append(r.trips, id)
}
