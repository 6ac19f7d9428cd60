package payments

import (
	"context"
	"testing"

	"engracedsmile/internal/bookings"
	"engracedsmile/internal/inventory"
	"engracedsmile/internal/shared/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	casSQL       = `UPDATE "bookings" SET .* WHERE id = \$\d+ AND status = \$\d+ AND payment_status = \$\d+`
	decrementSQL = `UPDATE "trips" SET "available_seats"=available_seats - 1,.* WHERE id = \$\d+ AND available_seats > 0`
	tripCountSQL = `SELECT count\(\*\) FROM "trips" WHERE id = \$1`
)

func newSQLService(t *testing.T) (*service, sqlmock.Sqlmock, *fakeGateway) {
	db, mock := dbtest.New(t)
	repo := bookings.NewRepository(db)
	uow := bookings.NewUnitOfWork(db, repo, inventory.NewLedger(db))
	gateway := newFakeGateway()
	svc := NewService(repo, uow, gateway, nil, &tripInvalidations{}, &eventLog{}, "").(*service)
	return svc, mock, gateway
}

func pendingBooking() *bookings.Booking {
	return &bookings.Booking{
		ID:               uuid.New(),
		BookingReference: "ES20261014A1B2C3D4",
		TripID:           uuid.New(),
		TotalAmount:      fare,
		Status:           bookings.StatusPending,
		PaymentStatus:    bookings.PaymentPending,
	}
}

func TestConfirm_CommitsBookingAndSeatTogether(t *testing.T) {
	svc, mock, _ := newSQLService(t)
	b := pendingBooking()

	mock.ExpectBegin()
	mock.ExpectExec(casSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := svc.confirm(context.Background(), b, b.BookingReference, "verify")

	require.NoError(t, err)
	assert.Equal(t, ResultConfirmed, outcome.Result)
	dbtest.Verify(t, mock)
}

func TestConfirm_SoldOutRollsBackThenRefunds(t *testing.T) {
	svc, mock, gateway := newSQLService(t)
	b := pendingBooking()

	mock.ExpectBegin()
	mock.ExpectExec(casSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(tripCountSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()
	// pending/pending -> cancelled/paid, then cancelled/paid -> cancelled/refunded
	mock.ExpectExec(casSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(casSQL).WillReturnResult(sqlmock.NewResult(0, 1))

	outcome, err := svc.confirm(context.Background(), b, b.BookingReference, "webhook")

	require.NoError(t, err)
	assert.Equal(t, ResultRefunded, outcome.Result)
	assert.Equal(t, bookings.StateRefunded, outcome.Booking.State())
	assert.Equal(t, []string{b.BookingReference}, gateway.refunds)
	dbtest.Verify(t, mock)
}
