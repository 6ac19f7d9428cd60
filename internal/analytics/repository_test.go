package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"engracedsmile/internal/shared/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monthStart = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	dayStart   = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
)

func TestPaymentTotals_ScansAggregates(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total_payments,.* FROM "bookings" WHERE payment_status = \$3`).
		WithArgs(monthStart, dayStart, "paid").
		WillReturnRows(sqlmock.NewRows([]string{
			"total_payments", "total_amount", "successful_payments", "pending_payments",
			"failed_payments", "refunded_payments", "paid_revenue", "monthly_revenue", "daily_revenue",
		}).AddRow(4, 6000000, 4, 0, 0, 0, 6000000, 3000000, 1500000))

	totals, err := repo.PaymentTotals(context.Background(), PaymentFilter{Status: "paid"}, monthStart, dayStart)
	require.NoError(t, err)
	assert.Equal(t, int64(4), totals.TotalPayments)
	assert.Equal(t, int64(6000000), totals.PaidRevenue)
	assert.Equal(t, int64(3000000), totals.MonthlyRevenue)
	assert.Equal(t, int64(1500000), totals.DailyRevenue)
	dbtest.Verify(t, mock)
}

func TestPaymentTotals_SearchMatchesReferencesAndPassenger(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`FROM "bookings" WHERE .*booking_reference ILIKE \$3 OR payment_reference ILIKE \$4 OR passenger_name ILIKE \$5 OR passenger_email ILIKE \$6`).
		WithArgs(monthStart, dayStart, "%ada%", "%ada%", "%ada%", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"total_payments"}).AddRow(1))

	totals, err := repo.PaymentTotals(context.Background(), PaymentFilter{Search: "ada"}, monthStart, dayStart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.TotalPayments)
	dbtest.Verify(t, mock)
}

func TestBookingTotals_WrapsErrors(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total,.* FROM "bookings"`).WillReturnError(errors.New("connection reset"))

	_, err := repo.BookingTotals(context.Background(), monthStart, dayStart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to aggregate bookings")
	dbtest.Verify(t, mock)
}

func TestFleetTotals_CountsEachTable(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)
	dayEnd := dayStart.AddDate(0, 0, 1)

	count := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }
	mock.ExpectQuery(`SELECT count\(\*\) FROM "routes" WHERE is_active = \$1`).WithArgs(true).WillReturnRows(count(6))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "vehicles" WHERE is_active = \$1`).WithArgs(true).WillReturnRows(count(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "drivers" WHERE is_active = \$1`).WithArgs(true).WillReturnRows(count(9))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "trips" WHERE is_active = \$1`).WithArgs(true).WillReturnRows(count(40))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "trips" WHERE is_active = \$1 AND departure_time >= \$2 AND departure_time < \$3`).
		WithArgs(true, dayStart, dayEnd).WillReturnRows(count(3))

	totals, err := repo.FleetTotals(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, FleetTotals{ActiveRoutes: 6, ActiveVehicles: 12, ActiveDrivers: 9, ActiveTrips: 40, TripsToday: 3}, *totals)
	dbtest.Verify(t, mock)
}

func TestTopRoutes_OnlySettledRevenue(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)
	routeID := uuid.New()

	mock.ExpectQuery(`FROM bookings b\s+JOIN trips t ON t.id = b.trip_id\s+JOIN routes r ON r.id = t.route_id\s+WHERE b.status IN \('confirmed', 'completed'\) AND b.payment_status = 'paid'`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"route_id", "from_city", "to_city", "bookings", "revenue"}).
			AddRow(routeID.String(), "Lagos", "Abuja", 8, 12000000))

	rows, err := repo.TopRoutes(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, routeID, rows[0].RouteID)
	assert.Equal(t, "Lagos", rows[0].FromCity)
	assert.Equal(t, int64(12000000), rows[0].Revenue)
	dbtest.Verify(t, mock)
}

func TestRevenueTrend_GroupsByDay(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT to_char\(date_trunc\('day', created_at\), 'YYYY-MM-DD'\) AS date`).
		WithArgs(dayStart).
		WillReturnRows(sqlmock.NewRows([]string{"date", "revenue", "bookings"}).AddRow("2026-10-14", 1500000, 1))

	rows, err := repo.RevenueTrend(context.Background(), dayStart)
	require.NoError(t, err)
	assert.Equal(t, []DailyRevenue{{Date: "2026-10-14", Revenue: 1500000, Bookings: 1}}, rows)
	dbtest.Verify(t, mock)
}
