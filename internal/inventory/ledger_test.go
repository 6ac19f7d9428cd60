package inventory

import (
	"context"
	"errors"
	"testing"

	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	decrementSQL = `UPDATE "trips" SET "available_seats"=available_seats - 1,.* WHERE id = \$\d AND available_seats > 0`
	restoreSQL   = `UPDATE "trips" SET "available_seats"=available_seats \+ 1,.* WHERE id = \$\d AND available_seats < total_seats`
	countSQL     = `SELECT count\(\*\) FROM "trips" WHERE id = \$1`
)

func TestDecrement_TakesSeat(t *testing.T) {
	db, mock := dbtest.New(t)
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewLedger(db).DecrementAvailableSeats(context.Background(), uuid.New()); err != nil {
		t.Fatalf("DecrementAvailableSeats: %v", err)
	}
	dbtest.Verify(t, mock)
}

func TestDecrement_Exhausted(t *testing.T) {
	db, mock := dbtest.New(t)
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := NewLedger(db).DecrementAvailableSeats(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrInventoryExhausted) {
		t.Fatalf("expected ErrInventoryExhausted, got %v", err)
	}
	dbtest.Verify(t, mock)
}

func TestDecrement_MissingTrip(t *testing.T) {
	db, mock := dbtest.New(t)
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := NewLedger(db).DecrementAvailableSeats(context.Background(), uuid.New())
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	dbtest.Verify(t, mock)
}

func TestRestore_FullTripIsNoop(t *testing.T) {
	db, mock := dbtest.New(t)
	mock.ExpectExec(restoreSQL).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewLedger(db).RestoreAvailableSeats(context.Background(), uuid.New()); err != nil {
		t.Fatalf("RestoreAvailableSeats: %v", err)
	}
	dbtest.Verify(t, mock)
}

func TestWithTx_UsesTransaction(t *testing.T) {
	db, mock := dbtest.New(t)
	mock.ExpectBegin()
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	l := NewLedger(db)
	err := db.Transaction(func(tx *gorm.DB) error {
		return l.WithTx(tx).DecrementAvailableSeats(context.Background(), uuid.New())
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	dbtest.Verify(t, mock)
}
