package database

import (
	"errors"
	"regexp"
	"testing"

	"engracedsmile/internal/shared/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateConstraints_RunsEveryStatement(t *testing.T) {
	db, mock := dbtest.New(t)
	for _, stmt := range constraintStatements {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, MigrateConstraints(db))
	dbtest.Verify(t, mock)
}

func TestMigrateConstraints_StopsOnFailure(t *testing.T) {
	db, mock := dbtest.New(t)
	mock.ExpectExec(`chk_bookings_confirmed_paid`).WillReturnError(errors.New("permission denied"))

	err := MigrateConstraints(db)
	assert.Error(t, err)
	dbtest.Verify(t, mock)
}

func TestConstraints_ConfirmedImpliesPaid(t *testing.T) {
	assert.Contains(t, constraintStatements[0], "status NOT IN ('confirmed', 'completed') OR payment_status = 'paid'")
}
