package services

import "errors"

var (
	// Wallet ledger
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrHoldNotFound      = errors.New("hold not found")
	ErrHoldExists        = errors.New("booking already has a hold")
	ErrAlreadyReleased   = errors.New("hold already released")
	ErrAlreadySettled    = errors.New("hold already settled")
	ErrInvalidRate       = errors.New("rate must be between 0 and 10000 basis points")

	// Rides and seats
	ErrRideNotFound     = errors.New("ride not found")
	ErrRideNotBookable  = errors.New("ride is not open for booking")
	ErrSeatsUnavailable = errors.New("not enough seats available")
	ErrInvalidSeats     = errors.New("invalid seat count")

	// Bookings
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSelfBooking       = errors.New("drivers cannot book their own ride")
	ErrForbidden         = errors.New("not allowed to act on this resource")

	// Ratings
	ErrInvalidRating       = errors.New("invalid rating")
	ErrAlreadyRated        = errors.New("booking already rated by this reviewer")
	ErrBookingNotCompleted = errors.New("booking is not completed")
	ErrNotParticipant      = errors.New("user did not take part in this booking")
)
