package bookings

import (
	"context"
	"testing"

	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectState = `SELECT .* FROM "bookings" WHERE id = \$1`

func stateRows(id uuid.UUID, status, payment string, ref interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status", "payment_status", "payment_reference"}).
		AddRow(id.String(), status, payment, ref)
}

func TestUpdateStatus_NoWriteWhenUnchanged(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)
	id := uuid.New()
	ref := "ES20261014A1B2C3D4"

	mock.ExpectQuery(selectState).WillReturnRows(stateRows(id, "pending", "pending", ref))

	err := repo.UpdateStatus(context.Background(), id, StateAwaitingPayment, &ref)
	require.NoError(t, err)
	dbtest.Verify(t, mock)
}

func TestUpdateStatus_WritesNewReference(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)
	id := uuid.New()
	ref := "ES20261014A1B2C3D4"

	mock.ExpectQuery(selectState).WillReturnRows(stateRows(id, "pending", "pending", nil))
	mock.ExpectExec(`UPDATE "bookings" SET .*"payment_reference".* WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, StateAwaitingPayment, &ref))
	dbtest.Verify(t, mock)
}

func TestUpdateStatus_Missing(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)

	mock.ExpectQuery(selectState).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.UpdateStatus(context.Background(), uuid.New(), StateConfirmed, nil)
	assert.True(t, apperrors.IsNotFound(err))
	dbtest.Verify(t, mock)
}

func TestTransitionStatus(t *testing.T) {
	const casSQL = `UPDATE "bookings" SET .* WHERE id = \$\d+ AND status = \$\d+ AND payment_status = \$\d+`

	tests := []struct {
		name    string
		rows    int64
		changed bool
	}{
		{name: "state matched", rows: 1, changed: true},
		{name: "another path won", rows: 0, changed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := dbtest.New(t)
			repo := NewRepository(db)
			mock.ExpectExec(casSQL).WillReturnResult(sqlmock.NewResult(0, tt.rows))

			reserved := true
			ref := "ES20261014A1B2C3D4"
			changed, err := repo.TransitionStatus(context.Background(), uuid.New(), Transition{
				From:             StateAwaitingPayment,
				To:               StateConfirmed,
				GatewayReference: &ref,
				SeatReserved:     &reserved,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			dbtest.Verify(t, mock)
		})
	}
}

func TestTransitionStatus_DuplicateGatewayReference(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnError(&pgconn.PgError{Code: "23505"})

	ref := "taken"
	_, err := repo.TransitionStatus(context.Background(), uuid.New(), Transition{
		From: StateAwaitingPayment, To: StateAwaitingPayment, GatewayReference: &ref,
	})
	assert.True(t, apperrors.IsConflict(err))
	dbtest.Verify(t, mock)
}

func TestCreate_RetriesReferenceCollision(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`INSERT INTO "bookings"`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	booking := &Booking{
		TripID: uuid.New(), PassengerName: "Ada Obi", PassengerPhone: "08030000000",
		PassengerEmail: "ada@example.com", PassengerCount: 1, TotalAmount: 1500000,
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	assert.Regexp(t, referencePattern, booking.BookingReference)
	assert.Equal(t, StateAwaitingPayment, booking.State())
	dbtest.Verify(t, mock)
}

func TestCreate_GivesUpAfterThreeCollisions(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRepository(db)
	for i := 0; i < referenceAttempts; i++ {
		mock.ExpectQuery(`INSERT INTO "bookings"`).WillReturnError(&pgconn.PgError{Code: "23505"})
	}

	err := repo.Create(context.Background(), &Booking{TripID: uuid.New(), PassengerCount: 1, TotalAmount: 1})
	assert.True(t, apperrors.IsConflict(err))
	dbtest.Verify(t, mock)
}
