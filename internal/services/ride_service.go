package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateRideRequest struct {
	Origin        string    `json:"origin" validate:"required,min=2,max=200"`
	Destination   string    `json:"destination" validate:"required,min=2,max=200"`
	TotalSeats    int       `json:"total_seats" validate:"required,seat_count"`
	PricePerSeat  int64     `json:"price_per_seat" validate:"required,money_amount"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
}

type RideService interface {
	CreateRide(ctx context.Context, driverID primitive.ObjectID, req *CreateRideRequest) (*models.Ride, error)
	GetRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)
	GetDriverRides(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetRideBookings(ctx context.Context, driverID, rideID primitive.ObjectID) ([]*models.Booking, error)

	StartRide(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.Ride, error)
	// EndRide completes the ride, settles approved bookings and rejects the
	// ones still pending.
	EndRide(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.RideCloseSummary, error)
	// CancelRide cancels the ride and every open booking on the driver's
	// behalf.
	CancelRide(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.RideCloseSummary, error)
	// CloseRideBookings finishes whatever open bookings a completed or
	// cancelled ride still has. It is safe to call repeatedly.
	CloseRideBookings(ctx context.Context, rideID primitive.ObjectID) (*models.RideCloseSummary, error)
}

type rideService struct {
	repos    *interfaces.Repositories
	bookings BookingService
	notifier NotificationService
	currency string
	logger   *logger.Logger
}

func NewRideService(
	repos *interfaces.Repositories,
	bookings BookingService,
	notifier NotificationService,
	currency string,
	log *logger.Logger,
) RideService {
	return &rideService{
		repos:    repos,
		bookings: bookings,
		notifier: notifier,
		currency: currency,
		logger:   log,
	}
}

func (s *rideService) CreateRide(ctx context.Context, driverID primitive.ObjectID, req *CreateRideRequest) (*models.Ride, error) {
	if req.TotalSeats < 1 || req.TotalSeats > utils.MaxSeatsPerRide {
		return nil, ErrInvalidSeats
	}
	if req.PricePerSeat <= 0 {
		return nil, ErrInvalidAmount
	}

	ride := &models.Ride{
		DriverID:       driverID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		PricePerSeat:   req.PricePerSeat,
		Currency:       s.currency,
		DepartureTime:  req.DepartureTime,
		Status:         models.RideStatusActive,
	}
	if err := s.repos.Rides.Create(ctx, ride); err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	s.logger.LogRideEvent(ride.ID, "ride_published", map[string]interface{}{
		"driver_id":      driverID.Hex(),
		"total_seats":    ride.TotalSeats,
		"price_per_seat": ride.PricePerSeat,
	})
	return ride, nil
}

func (s *rideService) GetRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.repos.Rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}

func (s *rideService) GetDriverRides(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return s.repos.Rides.ListByDriver(ctx, driverID, params)
}

func (s *rideService) GetRideBookings(ctx context.Context, driverID, rideID primitive.ObjectID) ([]*models.Booking, error) {
	if _, err := s.ownedRide(ctx, driverID, rideID); err != nil {
		return nil, err
	}
	return s.repos.Bookings.ListByRide(ctx, rideID)
}

func (s *rideService) StartRide(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.transitionRide(ctx, driverID, rideID,
		[]models.RideStatus{models.RideStatusActive, models.RideStatusFull}, models.RideStatusInProgress)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyRide(ctx, utils.EventRideStarted, ride, nil)
	return ride, nil
}

func (s *rideService) EndRide(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.RideCloseSummary, error) {
	ride, err := s.transitionRide(ctx, driverID, rideID,
		[]models.RideStatus{models.RideStatusInProgress}, models.RideStatusCompleted)
	if err != nil {
		return nil, err
	}

	summary := s.closeBookings(ctx, ride)
	s.notifier.NotifyRide(ctx, utils.EventRideCompleted, ride, summary)
	return summary, nil
}

func (s *rideService) CancelRide(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.RideCloseSummary, error) {
	ride, err := s.transitionRide(ctx, driverID, rideID,
		[]models.RideStatus{models.RideStatusDraft, models.RideStatusActive, models.RideStatusFull, models.RideStatusInProgress},
		models.RideStatusCancelled)
	if err != nil {
		return nil, err
	}

	summary := s.closeBookings(ctx, ride)
	s.notifier.NotifyRide(ctx, utils.EventRideCancelled, ride, summary)
	return summary, nil
}

func (s *rideService) CloseRideBookings(ctx context.Context, rideID primitive.ObjectID) (*models.RideCloseSummary, error) {
	ride, err := s.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != models.RideStatusCompleted && ride.Status != models.RideStatusCancelled {
		return nil, fmt.Errorf("%w: ride is %s", ErrInvalidTransition, ride.Status)
	}
	return s.closeBookings(ctx, ride), nil
}

// closeBookings moves every open booking of a closed ride to its final state.
// Each booking is its own transaction; failures are collected and left for
// the reconciliation sweep.
func (s *rideService) closeBookings(ctx context.Context, ride *models.Ride) *models.RideCloseSummary {
	summary := &models.RideCloseSummary{
		RideID:    ride.ID,
		Status:    ride.Status,
		Completed: []primitive.ObjectID{},
		Rejected:  []primitive.ObjectID{},
		Cancelled: []primitive.ObjectID{},
	}
	log := s.logger.WithRideID(ride.ID)

	open, err := s.repos.Bookings.ListByRide(ctx, ride.ID, models.OpenBookingStatuses...)
	if err != nil {
		log.WithError(err).Error("Failed to list open bookings of closed ride")
		return summary
	}

	for _, booking := range open {
		var err error
		switch {
		case ride.Status == models.RideStatusCancelled:
			_, err = s.bookings.CancelBooking(ctx, ride.DriverID, booking.ID, "ride cancelled")
			if err == nil {
				summary.Cancelled = append(summary.Cancelled, booking.ID)
			}
		case booking.Status == models.BookingStatusApproved:
			_, err = s.bookings.CompleteBooking(ctx, booking.ID)
			if err == nil {
				summary.Completed = append(summary.Completed, booking.ID)
			}
		default:
			_, err = s.bookings.RejectBooking(ctx, ride.DriverID, booking.ID, "ride ended before approval")
			if err == nil {
				summary.Rejected = append(summary.Rejected, booking.ID)
			}
		}

		if err != nil {
			summary.Failed = append(summary.Failed, booking.ID)
			log.WithBookingID(booking.ID).WithError(err).Error("Failed to close booking")
		}
	}

	return summary
}

func (s *rideService) ownedRide(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.IsOwnedBy(driverID) {
		return nil, ErrForbidden
	}
	return ride, nil
}

func (s *rideService) transitionRide(ctx context.Context, driverID, rideID primitive.ObjectID, from []models.RideStatus, to models.RideStatus) (*models.Ride, error) {
	if _, err := s.ownedRide(ctx, driverID, rideID); err != nil {
		return nil, err
	}

	ride, err := s.repos.Rides.TransitionStatus(ctx, rideID, from, to, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrConditionFailed):
			return nil, fmt.Errorf("%w: ride cannot move to %s", ErrInvalidTransition, to)
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}
