package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CapacityService arbitrates seats. Reservations are a single conditional
// decrement on the ride, so concurrent callers on the last seat serialize on
// that document and exactly one wins.
type CapacityService interface {
	ReserveSeats(ctx context.Context, rideID primitive.ObjectID, seats int) (*models.ReservationToken, error)
	// ReleaseSeats gives a booking's seats back to its ride once. A second
	// call for the same booking fails with ErrAlreadyReleased.
	ReleaseSeats(ctx context.Context, bookingID primitive.ObjectID) (*models.Ride, error)
}

type capacityService struct {
	repos *interfaces.Repositories
}

func NewCapacityService(repos *interfaces.Repositories) CapacityService {
	return &capacityService{repos: repos}
}

func (s *capacityService) ReserveSeats(ctx context.Context, rideID primitive.ObjectID, seats int) (*models.ReservationToken, error) {
	if seats < 1 || seats > utils.MaxSeatsPerBooking {
		return nil, ErrInvalidSeats
	}

	ride, err := s.repos.Rides.ReserveSeats(ctx, rideID, seats)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, ErrRideNotFound
		case errors.Is(err, interfaces.ErrConditionFailed):
			return nil, s.reservationFailure(ctx, rideID)
		}
		return nil, fmt.Errorf("failed to reserve seats: %w", err)
	}

	return &models.ReservationToken{
		Token:          uuid.NewString(),
		RideID:         ride.ID,
		Seats:          seats,
		RemainingSeats: ride.AvailableSeats,
		PricePerSeat:   ride.PricePerSeat,
		DriverID:       ride.DriverID,
		ReservedAt:     time.Now(),
	}, nil
}

func (s *capacityService) ReleaseSeats(ctx context.Context, bookingID primitive.ObjectID) (*models.Ride, error) {
	var ride *models.Ride
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		booking, err := s.repos.Bookings.MarkSeatsReleased(ctx, bookingID)
		if err != nil {
			switch {
			case errors.Is(err, interfaces.ErrNotFound):
				return ErrBookingNotFound
			case errors.Is(err, interfaces.ErrConditionFailed):
				return ErrAlreadyReleased
			}
			return err
		}

		ride, err = s.repos.Rides.RestoreSeats(ctx, booking.RideID, booking.Seats)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return ErrRideNotFound
			}
			return fmt.Errorf("failed to restore seats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ride, nil
}

// reservationFailure tells a closed ride apart from a full one.
func (s *capacityService) reservationFailure(ctx context.Context, rideID primitive.ObjectID) error {
	ride, err := s.repos.Rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrRideNotFound
		}
		return err
	}
	if !ride.IsBookable() {
		return ErrRideNotBookable
	}
	return ErrSeatsUnavailable
}
