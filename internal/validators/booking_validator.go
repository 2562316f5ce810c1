package validators

import (
	"fmt"

	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingCreateRequest struct {
	RideID primitive.ObjectID `json:"ride_id" validate:"required,object_id"`
	Seats  int                `json:"seats" validate:"required,seat_count"`
}

// BookingReasonRequest is the body of reject and cancel calls.
type BookingReasonRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

func ValidateBookingCreate(req *BookingCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.Seats > utils.MaxSeatsPerBooking {
		errors = append(errors, ValidationError{
			Field:   "seats",
			Tag:     "max",
			Value:   fmt.Sprintf("%d", req.Seats),
			Message: fmt.Sprintf("At most %d seats per booking", utils.MaxSeatsPerBooking),
		})
	}

	return errors
}

func ValidateBookingReason(req *BookingReasonRequest) ValidationErrors {
	return ValidateStruct(req)
}
