package utils

import "time"

// Application Constants
const (
	AppName    = "GoRideLedger"
	AppVersion = "1.0.0"

	DefaultCurrency = "MNT"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Ledger. Rates are basis points (1/10000), applied with truncation.
	BasisPointsScale             = 10000
	DefaultPlatformFeeBps        = 1000
	DefaultDriverCancelRefundBps = 10000
	DefaultPassengerRefundBps    = 8000
	DefaultRejectionRefundBps    = 10000

	// Largest single top-up, withdrawal or seat price, in minor units.
	MaxTransactionAmount = 100_000_000

	// Booking
	MaxSeatsPerBooking = 8
	MaxSeatsPerRide    = 50

	// Rating
	MinRating           = 1
	MaxRating           = 5
	MaxRatingCategories = 10

	// Cache TTLs
	BalanceCacheTTL = 5 * time.Minute
	RatingCacheTTL  = 15 * time.Minute

	ReconciliationInterval = 10 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrValidationFailed = "validation failed"
)

// Cache Keys
const (
	CacheBalancePrefix         = "wallet_balance:"
	CacheRatingAggregatePrefix = "rating_aggregate:"
)

// Event Types
const (
	EventBookingCreated   = "booking_created"
	EventBookingApproved  = "booking_approved"
	EventBookingRejected  = "booking_rejected"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
	EventRideStarted      = "ride_started"
	EventRideCompleted    = "ride_completed"
	EventRideCancelled    = "ride_cancelled"
)

// Rating categories a reviewer may score.
var AllowedRatingCategories = []string{
	"punctuality",
	"safety",
	"cleanliness",
	"communication",
	"comfort",
	"driving",
	"friendliness",
	"navigation",
}

func IsRatingCategory(name string) bool {
	for _, category := range AllowedRatingCategories {
		if category == name {
			return true
		}
	}
	return false
}
