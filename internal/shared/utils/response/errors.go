package response

import (
	"errors"
	"net/http"

	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RespondError maps domain errors onto the standard envelope. Anything
// unrecognised becomes a 500 with the fallback message.
func RespondError(c *gin.Context, err error, fallback string) {
	var validation *apperrors.ValidationError
	switch {
	case errors.As(err, &validation):
		Error(c, http.StatusBadRequest, "Validation failed", validation.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		Error(c, http.StatusNotFound, "Resource not found", err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		Error(c, http.StatusConflict, "Request conflicts with current state", err.Error())
	case errors.Is(err, apperrors.ErrInventoryExhausted):
		Error(c, http.StatusConflict, "No seats available on this trip", nil)
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		Error(c, http.StatusInternalServerError, "payment verification failed, contact support", nil)
	default:
		_ = c.Error(err)
		logger.GetDefault().LogHTTPError(c, err, http.StatusInternalServerError)
		Error(c, http.StatusInternalServerError, fallback, nil)
	}
}
