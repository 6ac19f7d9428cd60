package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const settledRevenue = "status IN ('confirmed', 'completed') AND payment_status = 'paid'"

// Repository runs the reporting aggregates. Everything is derived from the
// bookings table; no payment rows are stored separately.
type Repository interface {
	PaymentTotals(ctx context.Context, filter PaymentFilter, monthStart, dayStart time.Time) (*PaymentTotals, error)
	BookingTotals(ctx context.Context, monthStart, dayStart time.Time) (*BookingTotals, error)
	FleetTotals(ctx context.Context, dayStart, dayEnd time.Time) (*FleetTotals, error)
	RevenueTrend(ctx context.Context, since time.Time) ([]DailyRevenue, error)
	TopRoutes(ctx context.Context, limit int) ([]RoutePerformance, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func applyPaymentFilter(query *gorm.DB, filter PaymentFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"booking_reference ILIKE ? OR payment_reference ILIKE ? OR passenger_name ILIKE ? OR passenger_email ILIKE ?",
			like, like, like, like,
		)
	}
	return query
}

func (r *repository) PaymentTotals(ctx context.Context, filter PaymentFilter, monthStart, dayStart time.Time) (*PaymentTotals, error) {
	var totals PaymentTotals
	err := applyPaymentFilter(r.db.WithContext(ctx).Table("bookings"), filter).
		Select(`COUNT(*) AS total_payments,
			COALESCE(SUM(total_amount), 0) AS total_amount,
			COUNT(*) FILTER (WHERE payment_status = 'paid') AS successful_payments,
			COUNT(*) FILTER (WHERE payment_status = 'pending') AS pending_payments,
			COUNT(*) FILTER (WHERE payment_status = 'failed') AS failed_payments,
			COUNT(*) FILTER (WHERE payment_status = 'refunded') AS refunded_payments,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0) AS paid_revenue,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid' AND created_at >= ?), 0) AS monthly_revenue,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid' AND created_at >= ?), 0) AS daily_revenue`,
			monthStart, dayStart).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	return &totals, nil
}

func (r *repository) BookingTotals(ctx context.Context, monthStart, dayStart time.Time) (*BookingTotals, error) {
	var totals BookingTotals
	err := r.db.WithContext(ctx).Table("bookings").
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
			COALESCE(SUM(total_amount) FILTER (WHERE `+settledRevenue+`), 0) AS revenue,
			COALESCE(SUM(total_amount) FILTER (WHERE `+settledRevenue+` AND created_at >= ?), 0) AS monthly_revenue,
			COALESCE(SUM(total_amount) FILTER (WHERE `+settledRevenue+` AND created_at >= ?), 0) AS daily_revenue`,
			monthStart, dayStart).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	return &totals, nil
}

func (r *repository) FleetTotals(ctx context.Context, dayStart, dayEnd time.Time) (*FleetTotals, error) {
	db := r.db.WithContext(ctx)
	var totals FleetTotals

	counts := []struct {
		table string
		where string
		args  []interface{}
		dest  *int64
	}{
		{"routes", "is_active = ?", []interface{}{true}, &totals.ActiveRoutes},
		{"vehicles", "is_active = ?", []interface{}{true}, &totals.ActiveVehicles},
		{"drivers", "is_active = ?", []interface{}{true}, &totals.ActiveDrivers},
		{"trips", "is_active = ?", []interface{}{true}, &totals.ActiveTrips},
		{"trips", "is_active = ? AND departure_time >= ? AND departure_time < ?", []interface{}{true, dayStart, dayEnd}, &totals.TripsToday},
	}
	for _, c := range counts {
		if err := db.Table(c.table).Where(c.where, c.args...).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return &totals, nil
}

func (r *repository) RevenueTrend(ctx context.Context, since time.Time) ([]DailyRevenue, error) {
	var rows []DailyRevenue
	err := r.db.WithContext(ctx).Raw(`
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS date,
			COALESCE(SUM(total_amount), 0) AS revenue,
			COUNT(*) AS bookings
		FROM bookings
		WHERE `+settledRevenue+` AND created_at >= ?
		GROUP BY 1
		ORDER BY 1`, since).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue trend: %w", err)
	}
	return rows, nil
}

func (r *repository) TopRoutes(ctx context.Context, limit int) ([]RoutePerformance, error) {
	var rows []RoutePerformance
	err := r.db.WithContext(ctx).Raw(`
		SELECT r.id AS route_id, r.from_city, r.to_city,
			COUNT(b.id) AS bookings,
			COALESCE(SUM(b.total_amount), 0) AS revenue
		FROM bookings b
		JOIN trips t ON t.id = b.trip_id
		JOIN routes r ON r.id = t.route_id
		WHERE b.status IN ('confirmed', 'completed') AND b.payment_status = 'paid'
		GROUP BY r.id, r.from_city, r.to_city
		ORDER BY revenue DESC
		LIMIT ?`, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank routes: %w", err)
	}
	return rows, nil
}
