package validators

import (
	"strings"

	"goride-ledger/internal/services"
)

func ValidateRatingSubmit(req *services.SubmitRatingRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.Rating <= 2 && strings.TrimSpace(req.Comment) == "" {
		errors = append(errors, ValidationError{
			Field:   "comment",
			Message: "Comment is required for ratings 2 stars or below",
		})
	}

	return errors
}
