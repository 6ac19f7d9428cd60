package payments

import (
	"context"

	"engracedsmile/internal/bookings"
	"engracedsmile/pkg/paystack"
)

// Gateway is the part of the payment processor the reconciler needs
type Gateway interface {
	InitiateCharge(amountKobo int64, payerEmail, bookingReference, callbackURL string) paystack.CheckoutConfig
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResult, error)
	ValidateWebhookSignature(body []byte, signature string) bool
	InitiateRefund(ctx context.Context, reference string) error
}

// Result is where a reconciliation attempt left the booking
type Result string

const (
	ResultConfirmed        Result = "confirmed"
	ResultAlreadyConfirmed Result = "already_confirmed"
	ResultFailed           Result = "failed"
	ResultPending          Result = "pending"
	ResultRefunded         Result = "refunded"
	ResultRefundPending    Result = "refund_pending"
	ResultIgnored          Result = "ignored"
)

// Paid reports whether the passenger holds a confirmed seat
func (r Result) Paid() bool {
	return r == ResultConfirmed || r == ResultAlreadyConfirmed
}

// Outcome is returned by both the verify and webhook paths. Booking is nil
// when a webhook did not match any booking.
type Outcome struct {
	Result  Result
	Booking *bookings.Booking
	Reason  string
}

// pendingGatewayStates are verify statuses that mean the charge is still
// in flight, so the booking keeps waiting
var pendingGatewayStates = map[string]bool{
	"ongoing":    true,
	"pending":    true,
	"processing": true,
	"queued":     true,
}
