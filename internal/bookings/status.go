package bookings

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CanBeCancelled reports whether a customer or admin may still cancel
func (s Status) CanBeCancelled() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func (p PaymentStatus) String() string {
	return string(p)
}

// StatePair is the (status, payment_status) pair every transition moves
// between
type StatePair struct {
	Status        Status
	PaymentStatus PaymentStatus
}

var (
	StateAwaitingPayment = StatePair{StatusPending, PaymentPending}
	StateCancelledUnpaid = StatePair{StatusCancelled, PaymentPending}
	StateConfirmed       = StatePair{StatusConfirmed, PaymentPaid}
	StatePaymentFailed   = StatePair{StatusCancelled, PaymentFailed}
	StateCancelledPaid   = StatePair{StatusCancelled, PaymentPaid}
	StateRefunded        = StatePair{StatusCancelled, PaymentRefunded}
	StateCompleted       = StatePair{StatusCompleted, PaymentPaid}
)

func (p StatePair) String() string {
	return string(p.Status) + "/" + string(p.PaymentStatus)
}
