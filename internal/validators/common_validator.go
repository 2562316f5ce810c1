package validators

import (
	"fmt"
	"strings"

	"goride-ledger/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("currency_code", validateCurrencyCode)
	validate.RegisterValidation("rating_value", validateRatingValue)
	validate.RegisterValidation("category_name", validateCategoryName)
	validate.RegisterValidation("seat_count", validateSeatCount)
	validate.RegisterValidation("money_amount", validateMoneyAmount)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into the map shape of an API error response.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return ValidationErrors{{Field: "request", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "currency_code":
		return "Invalid currency code"
	case "rating_value":
		return fmt.Sprintf("Rating must be between %d and %d", utils.MinRating, utils.MaxRating)
	case "category_name":
		return fmt.Sprintf("Category must be one of %s", strings.Join(utils.AllowedRatingCategories, ", "))
	case "seat_count":
		return fmt.Sprintf("Seats must be between 1 and %d", utils.MaxSeatsPerRide)
	case "money_amount":
		return fmt.Sprintf("Amount must be between 1 and %d", utils.MaxTransactionAmount)
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// object_id accepts a hex string or a non-nil ObjectID.
func validateObjectID(fl validator.FieldLevel) bool {
	if id, ok := fl.Field().Interface().(primitive.ObjectID); ok {
		return !id.IsZero()
	}
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return utils.IsValidCurrency(fl.Field().String())
}

func validateRatingValue(fl validator.FieldLevel) bool {
	rating := fl.Field().Int()
	return rating >= utils.MinRating && rating <= utils.MaxRating
}

func validateCategoryName(fl validator.FieldLevel) bool {
	return utils.IsRatingCategory(fl.Field().String())
}

func validateSeatCount(fl validator.FieldLevel) bool {
	seats := fl.Field().Int()
	return seats >= 1 && seats <= utils.MaxSeatsPerRide
}

func validateMoneyAmount(fl validator.FieldLevel) bool {
	amount := fl.Field().Int()
	return amount > 0 && amount <= utils.MaxTransactionAmount
}
