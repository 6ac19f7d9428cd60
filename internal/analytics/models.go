package analytics

import (
	"time"

	"github.com/google/uuid"
)

// GatewayFeeBasisPoints is the processor's 1.5% cut used for fee reporting
const GatewayFeeBasisPoints = 150

// GatewayFee returns the fee on amount in kobo, rounded half up
func GatewayFee(amount int64) int64 {
	return (amount*GatewayFeeBasisPoints + 5000) / 10000
}

// Payment is a booking seen from the payments side
type Payment struct {
	ID               uuid.UUID  `json:"id"`
	BookingReference string     `json:"booking_reference"`
	Reference        string     `json:"reference"`
	Amount           int64      `json:"amount"` // kobo
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	Channel          string     `json:"channel"`
	Fee              int64      `json:"fee"`
	CustomerName     string     `json:"customer_name"`
	CustomerEmail    string     `json:"customer_email"`
	TripID           uuid.UUID  `json:"trip_id"`
	Route            string     `json:"route,omitempty"`
	Passengers       int        `json:"passengers"`
	SeatNumber       string     `json:"seat_number,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

// PaymentTotals aggregates every payment matching the filter, not just
// the current page
type PaymentTotals struct {
	TotalPayments      int64 `json:"total_payments"`
	TotalAmount        int64 `json:"total_amount"`
	SuccessfulPayments int64 `json:"successful_payments"`
	PendingPayments    int64 `json:"pending_payments"`
	FailedPayments     int64 `json:"failed_payments"`
	RefundedPayments   int64 `json:"refunded_payments"`
	PaidRevenue        int64 `json:"paid_revenue"`
	MonthlyRevenue     int64 `json:"monthly_revenue"`
	DailyRevenue       int64 `json:"daily_revenue"`
	AverageAmount      int64 `json:"average_amount"`
	TotalFees          int64 `json:"total_fees"`
}

type PaymentsReport struct {
	Totals   PaymentTotals `json:"totals"`
	Payments []Payment     `json:"payments"`
	Total    int64         `json:"-"`
}

// PaymentFilter narrows the admin payments view
type PaymentFilter struct {
	Status   string
	Search   string
	From, To *time.Time
	Page     int
	Limit    int
}

type Dashboard struct {
	TotalBookings     int64              `json:"total_bookings"`
	ConfirmedBookings int64              `json:"confirmed_bookings"`
	PendingBookings   int64              `json:"pending_bookings"`
	CancelledBookings int64              `json:"cancelled_bookings"`
	TotalRevenue      int64              `json:"total_revenue"`
	MonthlyRevenue    int64              `json:"monthly_revenue"`
	DailyRevenue      int64              `json:"daily_revenue"`
	ActiveRoutes      int64              `json:"active_routes"`
	ActiveVehicles    int64              `json:"active_vehicles"`
	ActiveDrivers     int64              `json:"active_drivers"`
	ActiveTrips       int64              `json:"active_trips"`
	TripsToday        int64              `json:"trips_today"`
	RevenueTrend      []DailyRevenue     `json:"revenue_trend"`
	TopRoutes         []RoutePerformance `json:"top_routes"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

type DailyRevenue struct {
	Date     string `json:"date"`
	Revenue  int64  `json:"revenue"`
	Bookings int64  `json:"bookings"`
}

type RoutePerformance struct {
	RouteID  uuid.UUID `json:"route_id"`
	FromCity string    `json:"from_city"`
	ToCity   string    `json:"to_city"`
	Bookings int64     `json:"bookings"`
	Revenue  int64     `json:"revenue"`
}

// BookingTotals is the scan target for the dashboard booking aggregate
type BookingTotals struct {
	Total          int64
	Confirmed      int64
	Pending        int64
	Cancelled      int64
	Revenue        int64
	MonthlyRevenue int64
	DailyRevenue   int64
}

type FleetTotals struct {
	ActiveRoutes   int64
	ActiveVehicles int64
	ActiveDrivers  int64
	ActiveTrips    int64
	TripsToday     int64
}
