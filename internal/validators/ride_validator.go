package validators

import (
	"strings"
	"time"

	"goride-ledger/internal/services"
)

// Rides may not be published with a departure already in the past.
const departureGracePeriod = 5 * time.Minute

func ValidateRideCreate(req *services.CreateRideRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if !req.DepartureTime.IsZero() && req.DepartureTime.Before(time.Now().Add(-departureGracePeriod)) {
		errors = append(errors, ValidationError{
			Field:   "departure_time",
			Tag:     "future_date",
			Value:   req.DepartureTime.Format(time.RFC3339),
			Message: "Departure time must be in the future",
		})
	}

	if req.Origin != "" && strings.EqualFold(strings.TrimSpace(req.Origin), strings.TrimSpace(req.Destination)) {
		errors = append(errors, ValidationError{
			Field:   "destination",
			Message: "Destination must differ from origin",
		})
	}

	return errors
}
