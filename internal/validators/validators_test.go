package validators

import (
	"testing"
	"time"

	"goride-ledger/internal/services"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fieldsOf(errs ValidationErrors) []string {
	fields := make([]string, 0, len(errs))
	for _, err := range errs {
		fields = append(fields, err.Field)
	}
	return fields
}

func TestValidateBookingCreate(t *testing.T) {
	assert.Empty(t, ValidateBookingCreate(&BookingCreateRequest{RideID: primitive.NewObjectID(), Seats: 2}))

	errs := ValidateBookingCreate(&BookingCreateRequest{Seats: 0})
	assert.ElementsMatch(t, []string{"RideID", "Seats"}, fieldsOf(errs))

	errs = ValidateBookingCreate(&BookingCreateRequest{RideID: primitive.NewObjectID(), Seats: 9})
	assert.Equal(t, []string{"seats"}, fieldsOf(errs))
}

func TestValidateWalletAmount(t *testing.T) {
	assert.Empty(t, ValidateWalletAmount(&WalletAmountRequest{Amount: 5000}))
	assert.NotEmpty(t, ValidateWalletAmount(&WalletAmountRequest{Amount: 0}))
	assert.NotEmpty(t, ValidateWalletAmount(&WalletAmountRequest{Amount: -10}))

	errs := ValidateWalletAmount(&WalletAmountRequest{Amount: 100_000_001})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "money_amount", errs[0].Tag)
		assert.Equal(t, map[string]string{"Amount": errs[0].Message}, errs.Details())
	}
}

func TestValidateRideCreate(t *testing.T) {
	valid := &services.CreateRideRequest{
		Origin:        "Ulaanbaatar",
		Destination:   "Erdenet",
		TotalSeats:    3,
		PricePerSeat:  25000,
		DepartureTime: time.Now().Add(2 * time.Hour),
	}
	assert.Empty(t, ValidateRideCreate(valid))

	past := *valid
	past.DepartureTime = time.Now().Add(-time.Hour)
	assert.Equal(t, []string{"departure_time"}, fieldsOf(ValidateRideCreate(&past)))

	loop := *valid
	loop.Destination = "ulaanbaatar"
	assert.Equal(t, []string{"destination"}, fieldsOf(ValidateRideCreate(&loop)))

	tooMany := *valid
	tooMany.TotalSeats = 51
	assert.Equal(t, []string{"TotalSeats"}, fieldsOf(ValidateRideCreate(&tooMany)))
}

func TestValidateRatingSubmit(t *testing.T) {
	req := &services.SubmitRatingRequest{
		BookingID:  primitive.NewObjectID(),
		Rating:     5,
		Categories: map[string]int{"safety": 5, "comfort": 4},
	}
	assert.Empty(t, ValidateRatingSubmit(req))

	req.Categories["vibes"] = 5
	assert.NotEmpty(t, ValidateRatingSubmit(req))

	low := &services.SubmitRatingRequest{BookingID: primitive.NewObjectID(), Rating: 2}
	assert.Equal(t, []string{"comment"}, fieldsOf(ValidateRatingSubmit(low)))

	low.Comment = "late by forty minutes"
	assert.Empty(t, ValidateRatingSubmit(low))

	outOfRange := &services.SubmitRatingRequest{BookingID: primitive.NewObjectID(), Rating: 6, Comment: "x"}
	assert.Equal(t, []string{"Rating"}, fieldsOf(ValidateRatingSubmit(outOfRange)))
}
