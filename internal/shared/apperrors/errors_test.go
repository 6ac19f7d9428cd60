package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", NewValidation("passenger_email", "is required"))

	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "create booking: passenger_email: is required", err.Error())
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("trip 42: %w", ErrNotFound)))
	assert.True(t, IsConflict(fmt.Errorf("route in use: %w", ErrConflict)))
	assert.False(t, IsValidation(ErrConflict))
	assert.Equal(t, "amount must be positive", (&ValidationError{Msg: "amount must be positive"}).Error())
}
