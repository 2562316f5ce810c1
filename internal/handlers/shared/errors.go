package handlers

import (
	"errors"
	"net/http"

	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/services"
	"goride-ledger/internal/utils"
	"goride-ledger/internal/validators"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Business-rule failures are client errors; anything not listed is a 500.
var errorMappings = []errorMapping{
	{services.ErrRideNotFound, http.StatusNotFound, "RIDE_NOT_FOUND"},
	{services.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{services.ErrHoldNotFound, http.StatusNotFound, "HOLD_NOT_FOUND"},
	{interfaces.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},

	{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{services.ErrNotParticipant, http.StatusForbidden, "NOT_PARTICIPANT"},

	{services.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{services.ErrInsufficientFunds, http.StatusBadRequest, "INSUFFICIENT_FUNDS"},
	{services.ErrHoldExists, http.StatusBadRequest, "HOLD_EXISTS"},
	{services.ErrAlreadyReleased, http.StatusBadRequest, "ALREADY_RELEASED"},
	{services.ErrAlreadySettled, http.StatusBadRequest, "ALREADY_SETTLED"},
	{services.ErrInvalidRate, http.StatusBadRequest, "INVALID_RATE"},
	{services.ErrRideNotBookable, http.StatusBadRequest, "RIDE_NOT_BOOKABLE"},
	{services.ErrSeatsUnavailable, http.StatusBadRequest, "SEATS_UNAVAILABLE"},
	{services.ErrInvalidSeats, http.StatusBadRequest, "INVALID_SEATS"},
	{services.ErrInvalidTransition, http.StatusBadRequest, "INVALID_TRANSITION"},
	{services.ErrSelfBooking, http.StatusBadRequest, "SELF_BOOKING"},
	{services.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{services.ErrAlreadyRated, http.StatusBadRequest, "ALREADY_RATED"},
	{services.ErrBookingNotCompleted, http.StatusBadRequest, "BOOKING_NOT_COMPLETED"},
}

func (h *base) respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			utils.ErrorResponse(c, m.status, m.code, err.Error())
			return
		}
	}

	h.logger.WithContext(c.Request.Context()).WithError(err).
		WithField("endpoint", c.FullPath()).Error("Request failed")
	utils.InternalServerErrorResponse(c)
}

func respondValidation(c *gin.Context, errs validators.ValidationErrors) bool {
	if len(errs) == 0 {
		return false
	}
	utils.ValidationErrorResponse(c, errs.Details())
	return true
}
