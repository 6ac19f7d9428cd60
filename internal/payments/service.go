package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"engracedsmile/internal/bookings"
	"engracedsmile/internal/inventory"
	"engracedsmile/internal/notifications"
	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/trips"
	"engracedsmile/pkg/logger"
	"engracedsmile/pkg/paystack"

	"github.com/google/uuid"
)

// Service reconciles bookings with the payment gateway. The client verify
// call and the webhook may race for the same booking; both go through the
// same compare-and-swap so a seat is taken at most once.
type Service interface {
	StartCheckout(ctx context.Context, bookingID uuid.UUID) (*paystack.CheckoutConfig, error)
	VerifyPayment(ctx context.Context, reference, bookingID string) (*Outcome, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*Outcome, error)
}

type service struct {
	repo        bookings.Repository
	uow         bookings.UnitOfWork
	gateway     Gateway
	replay      *ReplayGuard
	invalidator trips.Invalidator
	publisher   notifications.Publisher
	callbackURL string
}

func NewService(repo bookings.Repository, uow bookings.UnitOfWork, gateway Gateway, replay *ReplayGuard, invalidator trips.Invalidator, publisher notifications.Publisher, callbackURL string) Service {
	if invalidator == nil {
		invalidator = trips.NewSearchCache(nil)
	}
	return &service{
		repo:        repo,
		uow:         uow,
		gateway:     gateway,
		replay:      replay,
		invalidator: invalidator,
		publisher:   publisher,
		callbackURL: callbackURL,
	}
}

// StartCheckout links the booking to a gateway reference and returns the
// widget configuration. The booking reference is reused as the gateway
// reference.
func (s *service) StartCheckout(ctx context.Context, bookingID uuid.UUID) (*paystack.CheckoutConfig, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.State() != bookings.StateAwaitingPayment {
		return nil, apperrors.NewValidation("bookingId", "booking is not awaiting payment")
	}

	if booking.PaymentReference == nil {
		reference := booking.BookingReference
		changed, err := s.repo.TransitionStatus(ctx, booking.ID, bookings.Transition{
			From:             bookings.StateAwaitingPayment,
			To:               bookings.StateAwaitingPayment,
			GatewayReference: &reference,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to attach payment reference: %w", err)
		}
		if !changed {
			return nil, apperrors.NewValidation("bookingId", "booking is not awaiting payment")
		}
		booking.PaymentReference = &reference
	}

	cfg := s.gateway.InitiateCharge(booking.TotalAmount, booking.PassengerEmail, *booking.PaymentReference, s.callbackURL)
	return &cfg, nil
}

func (s *service) VerifyPayment(ctx context.Context, reference, bookingID string) (*Outcome, error) {
	reference = strings.TrimSpace(reference)
	bookingID = strings.TrimSpace(bookingID)
	if reference == "" || bookingID == "" {
		return nil, apperrors.NewValidation("reference", "reference and bookingId are required")
	}
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperrors.NewValidation("bookingId", "must be a valid id")
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.PaymentReference != nil && *booking.PaymentReference != reference {
		return nil, apperrors.NewValidation("reference", "does not belong to this booking")
	}
	if outcome, done := settled(booking); done {
		return outcome, nil
	}

	start := time.Now()
	result, err := s.gateway.VerifyTransaction(ctx, reference)
	logger.GetDefault().LogPaymentVerification(ctx, reference, err == nil && result.Succeeded, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, booking, reference, result.Succeeded, result.Status, result.Amount, "verify")
}

// HandleWebhook authenticates and applies one gateway delivery. Events that
// do not concern a known booking are acknowledged without effect.
func (s *service) HandleWebhook(ctx context.Context, body []byte, signature string) (*Outcome, error) {
	if !s.gateway.ValidateWebhookSignature(body, signature) {
		return nil, fmt.Errorf("webhook rejected: %w", apperrors.ErrSignatureInvalid)
	}
	if !s.replay.FirstDelivery(ctx, body) {
		return &Outcome{Result: ResultIgnored, Reason: "duplicate delivery"}, nil
	}

	outcome, err := s.handleEvent(ctx, body)
	if err != nil {
		s.replay.Release(ctx, body)
		return nil, err
	}
	return outcome, nil
}

func (s *service) handleEvent(ctx context.Context, body []byte) (*Outcome, error) {
	event, err := paystack.ParseWebhookEvent(body)
	if err != nil {
		return nil, err
	}
	log := logger.GetDefault()

	if !event.Kind.AffectsBooking() {
		log.InfoContext(ctx, "ignoring webhook event",
			slog.String("event", event.Name),
			slog.String("payment_reference", event.Reference),
		)
		return &Outcome{Result: ResultIgnored, Reason: "event " + event.Name + " does not affect bookings"}, nil
	}
	if event.Reference == "" {
		log.WarnContext(ctx, "webhook event without reference", slog.String("event", event.Name))
		return &Outcome{Result: ResultIgnored, Reason: "missing reference"}, nil
	}

	booking, err := s.lookup(ctx, event.Reference)
	if apperrors.IsNotFound(err) {
		log.WarnContext(ctx, "webhook for unknown payment reference",
			slog.String("event", event.Name),
			slog.String("payment_reference", event.Reference),
		)
		return &Outcome{Result: ResultIgnored, Reason: "unknown reference"}, nil
	}
	if err != nil {
		return nil, err
	}
	if outcome, done := settled(booking); done {
		return outcome, nil
	}

	succeeded := event.Kind == paystack.EventChargeSuccess
	status := "failed"
	if succeeded {
		status = "success"
	}
	return s.apply(ctx, booking, event.Reference, succeeded, status, event.Amount, "webhook")
}

// lookup finds the booking a gateway reference belongs to. A booking whose
// checkout was never started still matches on its own reference.
func (s *service) lookup(ctx context.Context, reference string) (*bookings.Booking, error) {
	booking, err := s.repo.FindByGatewayReference(ctx, reference)
	if apperrors.IsNotFound(err) {
		return s.repo.FindByReference(ctx, reference)
	}
	return booking, err
}

// apply moves the booking according to what the gateway reported
func (s *service) apply(ctx context.Context, booking *bookings.Booking, reference string, succeeded bool, gatewayStatus string, amount int64, source string) (*Outcome, error) {
	if !succeeded {
		if pendingGatewayStates[gatewayStatus] {
			return &Outcome{Result: ResultPending, Booking: booking, Reason: "payment is still processing"}, nil
		}
		return s.fail(ctx, booking, "gateway reported "+safeStatus(gatewayStatus))
	}
	if amount != 0 && amount != booking.TotalAmount {
		return s.fail(ctx, booking, fmt.Sprintf("amount mismatch: paid %d, expected %d", amount, booking.TotalAmount))
	}
	if booking.State() == bookings.StateCancelledUnpaid {
		return s.refundLatePayment(ctx, booking, reference)
	}
	return s.confirm(ctx, booking, reference, source)
}

// confirm takes the seat and confirms the booking in one transaction. The
// seat is only taken when this call won the compare-and-swap.
func (s *service) confirm(ctx context.Context, booking *bookings.Booking, reference, source string) (*Outcome, error) {
	var confirmed, exhausted bool
	err := s.uow.Do(ctx, func(repo bookings.Repository, ledger inventory.Ledger) error {
		reserved := true
		changed, err := repo.TransitionStatus(ctx, booking.ID, bookings.Transition{
			From:             bookings.StateAwaitingPayment,
			To:               bookings.StateConfirmed,
			GatewayReference: &reference,
			SeatReserved:     &reserved,
		})
		if err != nil || !changed {
			return err
		}
		if err := ledger.DecrementAvailableSeats(ctx, booking.TripID); err != nil {
			exhausted = errors.Is(err, apperrors.ErrInventoryExhausted)
			return err
		}
		confirmed = true
		return nil
	})

	switch {
	case exhausted:
		return s.soldOut(ctx, booking, reference)
	case err != nil:
		return nil, fmt.Errorf("failed to confirm booking %s: %w", booking.BookingReference, err)
	case !confirmed:
		outcome, err := s.reload(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if outcome.Booking.State() == bookings.StateCancelledUnpaid {
			return s.refundLatePayment(ctx, outcome.Booking, reference)
		}
		return outcome, nil
	}

	booking.Status = bookings.StatusConfirmed
	booking.PaymentStatus = bookings.PaymentPaid
	booking.PaymentReference = &reference
	booking.SeatReserved = true

	s.invalidator.InvalidateTrip(ctx, booking.TripID)
	logger.GetDefault().LogBookingConfirmed(ctx, booking.ID.String(), booking.BookingReference, source)
	notifications.Emit(ctx, s.publisher, booking.Event(notifications.EventBookingConfirmed, ""))
	return &Outcome{Result: ResultConfirmed, Booking: booking}, nil
}

func (s *service) fail(ctx context.Context, booking *bookings.Booking, reason string) (*Outcome, error) {
	changed, err := s.repo.TransitionStatus(ctx, booking.ID, bookings.Transition{
		From: bookings.StateAwaitingPayment,
		To:   bookings.StatePaymentFailed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking %s failed: %w", booking.BookingReference, err)
	}
	if !changed {
		return s.reload(ctx, booking.ID)
	}

	booking.Status = bookings.StatusCancelled
	booking.PaymentStatus = bookings.PaymentFailed

	logger.GetDefault().LogBookingFailed(ctx, booking.ID.String(), booking.BookingReference, reason)
	notifications.Emit(ctx, s.publisher, booking.Event(notifications.EventBookingPaymentFailed, reason))
	return &Outcome{Result: ResultFailed, Booking: booking, Reason: reason}, nil
}

// soldOut records a charge that arrived after the last seat went. The
// booking is cancelled as paid and the money goes back.
func (s *service) soldOut(ctx context.Context, booking *bookings.Booking, reference string) (*Outcome, error) {
	changed, err := s.repo.TransitionStatus(ctx, booking.ID, bookings.Transition{
		From:             bookings.StateAwaitingPayment,
		To:               bookings.StateCancelledPaid,
		GatewayReference: &reference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel sold out booking %s: %w", booking.BookingReference, err)
	}
	if !changed {
		return s.reload(ctx, booking.ID)
	}

	booking.Status = bookings.StatusCancelled
	booking.PaymentStatus = bookings.PaymentPaid
	booking.PaymentReference = &reference

	reason := "trip sold out before payment was confirmed"
	logger.GetDefault().LogBookingFailed(ctx, booking.ID.String(), booking.BookingReference, reason)
	return s.refund(ctx, booking, reference, reason)
}

// refundLatePayment handles a charge for a booking cancelled while it was
// still waiting for payment
func (s *service) refundLatePayment(ctx context.Context, booking *bookings.Booking, reference string) (*Outcome, error) {
	changed, err := s.repo.TransitionStatus(ctx, booking.ID, bookings.Transition{
		From:             bookings.StateCancelledUnpaid,
		To:               bookings.StateCancelledPaid,
		GatewayReference: &reference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record late payment for %s: %w", booking.BookingReference, err)
	}
	if !changed {
		return s.reload(ctx, booking.ID)
	}

	booking.PaymentStatus = bookings.PaymentPaid
	booking.PaymentReference = &reference
	return s.refund(ctx, booking, reference, "booking was cancelled before payment arrived")
}

// refund asks the gateway for the money back. When that fails the booking
// stays cancelled/paid and an event asks for manual follow-up.
func (s *service) refund(ctx context.Context, booking *bookings.Booking, reference, reason string) (*Outcome, error) {
	log := logger.GetDefault()

	if err := s.gateway.InitiateRefund(ctx, reference); err != nil {
		log.ErrorContext(ctx, "refund failed, manual follow-up required",
			slog.String("booking_id", booking.ID.String()),
			slog.String("payment_reference", reference),
			slog.Any("error", err),
		)
		notifications.Emit(ctx, s.publisher, booking.Event(notifications.EventBookingRefundRequired, reason))
		return &Outcome{Result: ResultRefundPending, Booking: booking, Reason: reason}, nil
	}

	changed, err := s.repo.TransitionStatus(ctx, booking.ID, bookings.Transition{
		From: bookings.StateCancelledPaid,
		To:   bookings.StateRefunded,
	})
	if err != nil {
		return nil, fmt.Errorf("refund issued but booking %s not updated: %w", booking.BookingReference, err)
	}
	if changed {
		booking.PaymentStatus = bookings.PaymentRefunded
	}

	log.InfoContext(ctx, "payment refunded",
		slog.String("booking_id", booking.ID.String()),
		slog.String("payment_reference", reference),
		slog.String("reason", reason),
	)
	notifications.Emit(ctx, s.publisher, booking.Event(notifications.EventBookingRefunded, reason))
	return &Outcome{Result: ResultRefunded, Booking: booking, Reason: reason}, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return outcomeFor(booking), nil
}

// settled reports whether the booking needs no gateway input anymore
func settled(b *bookings.Booking) (*Outcome, bool) {
	switch b.State() {
	case bookings.StateAwaitingPayment, bookings.StateCancelledUnpaid:
		return nil, false
	}
	return outcomeFor(b), true
}

func outcomeFor(b *bookings.Booking) *Outcome {
	outcome := &Outcome{Booking: b}
	switch b.State() {
	case bookings.StateConfirmed, bookings.StateCompleted:
		outcome.Result = ResultAlreadyConfirmed
	case bookings.StateAwaitingPayment:
		outcome.Result = ResultPending
	case bookings.StateRefunded:
		outcome.Result = ResultRefunded
	case bookings.StateCancelledPaid:
		outcome.Result = ResultRefundPending
	default:
		outcome.Result = ResultFailed
		outcome.Reason = "booking is " + b.State().String()
	}
	return outcome
}

func safeStatus(status string) string {
	if status == "" {
		return "an unsuccessful charge"
	}
	return status
}
