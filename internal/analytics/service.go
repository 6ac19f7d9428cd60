package analytics

import (
	"context"
	"fmt"
	"time"

	"engracedsmile/internal/bookings"
	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/constants"
	"engracedsmile/pkg/cache"
)

const (
	trendDays    = 30
	topRoutesMax = 5
)

// BookingLister pages through bookings for the payments view
type BookingLister interface {
	List(ctx context.Context, filter bookings.ListFilter) ([]bookings.Booking, int64, error)
}

type Service interface {
	Payments(ctx context.Context, filter PaymentFilter) (*PaymentsReport, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	repo     Repository
	bookings BookingLister
	cache    cache.Service
	currency string
	now      func() time.Time
}

func NewService(repo Repository, lister BookingLister, c cache.Service, currency string) Service {
	if currency == "" {
		currency = "NGN"
	}
	return &service{
		repo:     repo,
		bookings: lister,
		cache:    c,
		currency: currency,
		now:      time.Now,
	}
}

func (s *service) Payments(ctx context.Context, filter PaymentFilter) (*PaymentsReport, error) {
	if filter.Status != "" && !bookings.PaymentStatus(filter.Status).IsValid() {
		return nil, apperrors.NewValidation("status", "must be one of pending, paid, failed, refunded")
	}

	list, total, err := s.bookings.List(ctx, bookings.ListFilter{
		PaymentStatus: bookings.PaymentStatus(filter.Status),
		From:          filter.From,
		To:            filter.To,
		Search:        filter.Search,
		Page:          filter.Page,
		Limit:         filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	monthStart, dayStart := periodStarts(s.now())
	totals, err := s.repo.PaymentTotals(ctx, filter, monthStart, dayStart)
	if err != nil {
		return nil, err
	}
	totals.TotalFees = GatewayFee(totals.PaidRevenue)
	if totals.TotalPayments > 0 {
		totals.AverageAmount = totals.TotalAmount / totals.TotalPayments
	}

	payments := make([]Payment, 0, len(list))
	for i := range list {
		payments = append(payments, s.toPayment(&list[i]))
	}
	return &PaymentsReport{Totals: *totals, Payments: payments, Total: total}, nil
}

func (s *service) toPayment(b *bookings.Booking) Payment {
	p := Payment{
		ID:               b.ID,
		BookingReference: b.BookingReference,
		Reference:        b.BookingReference,
		Amount:           b.TotalAmount,
		Currency:         s.currency,
		Status:           string(b.PaymentStatus),
		Channel:          "paystack",
		CustomerName:     b.PassengerName,
		CustomerEmail:    b.PassengerEmail,
		TripID:           b.TripID,
		Passengers:       b.PassengerCount,
		SeatNumber:       b.SeatNumber,
		CreatedAt:        b.CreatedAt,
	}
	if b.PaymentReference != nil {
		p.Reference = *b.PaymentReference
	}
	if b.PaymentStatus == bookings.PaymentPaid || b.PaymentStatus == bookings.PaymentRefunded {
		paidAt := b.UpdatedAt
		p.PaidAt = &paidAt
	}
	if b.PaymentStatus == bookings.PaymentPaid {
		p.Fee = GatewayFee(b.TotalAmount)
	}
	if b.Trip != nil && b.Trip.Route != nil {
		p.Route = b.Trip.Route.FromCity + " - " + b.Trip.Route.ToCity
	}
	return p
}

// Dashboard is cached briefly; figures may lag bookings by the TTL
func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if s.cache == nil {
		return s.buildDashboard(ctx)
	}
	var dashboard Dashboard
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_DASHBOARD, constants.TTL_ANALYTICS_DASHBOARD, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	}, &dashboard)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *service) buildDashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now().UTC()
	monthStart, dayStart := periodStarts(now)

	bookingTotals, err := s.repo.BookingTotals(ctx, monthStart, dayStart)
	if err != nil {
		return nil, err
	}
	fleet, err := s.repo.FleetTotals(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	trendStart := dayStart.AddDate(0, 0, -(trendDays - 1))
	trend, err := s.repo.RevenueTrend(ctx, trendStart)
	if err != nil {
		return nil, err
	}
	topRoutes, err := s.repo.TopRoutes(ctx, topRoutesMax)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalBookings:     bookingTotals.Total,
		ConfirmedBookings: bookingTotals.Confirmed,
		PendingBookings:   bookingTotals.Pending,
		CancelledBookings: bookingTotals.Cancelled,
		TotalRevenue:      bookingTotals.Revenue,
		MonthlyRevenue:    bookingTotals.MonthlyRevenue,
		DailyRevenue:      bookingTotals.DailyRevenue,
		ActiveRoutes:      fleet.ActiveRoutes,
		ActiveVehicles:    fleet.ActiveVehicles,
		ActiveDrivers:     fleet.ActiveDrivers,
		ActiveTrips:       fleet.ActiveTrips,
		TripsToday:        fleet.TripsToday,
		RevenueTrend:      fillTrend(trend, trendStart, trendDays),
		TopRoutes:         topRoutes,
		GeneratedAt:       now,
	}, nil
}

// fillTrend returns one entry per day from start, zero where nothing sold
func fillTrend(rows []DailyRevenue, start time.Time, days int) []DailyRevenue {
	byDate := make(map[string]DailyRevenue, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}
	out := make([]DailyRevenue, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		row, ok := byDate[date]
		if !ok {
			row = DailyRevenue{Date: date}
		}
		out = append(out, row)
	}
	return out
}

func periodStarts(at time.Time) (month, day time.Time) {
	at = at.UTC()
	month = time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	day = time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	return month, day
}
