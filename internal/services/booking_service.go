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

type BookingService interface {
	// CreateBooking reserves seats, holds the price and writes the booking
	// in one transaction; a failure leaves neither seats nor funds taken.
	CreateBooking(ctx context.Context, passengerID, rideID primitive.ObjectID, seats int) (*models.Booking, error)
	ApproveBooking(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error)
	RejectBooking(ctx context.Context, driverID, bookingID primitive.ObjectID, reason string) (*models.Booking, error)
	// CancelBooking derives the refund policy from who cancels.
	CancelBooking(ctx context.Context, actorID, bookingID primitive.ObjectID, reason string) (*models.Booking, error)
	// CompleteBooking settles an approved booking once its ride is completed.
	CompleteBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error)

	GetBooking(ctx context.Context, userID, bookingID primitive.ObjectID) (*models.Booking, error)
	GetPassengerBookings(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
}

type bookingService struct {
	repos    *interfaces.Repositories
	capacity CapacityService
	wallet   WalletService
	notifier NotificationService
	policy   FeePolicy
	logger   *logger.Logger
}

func NewBookingService(
	repos *interfaces.Repositories,
	capacity CapacityService,
	wallet WalletService,
	notifier NotificationService,
	policy FeePolicy,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		repos:    repos,
		capacity: capacity,
		wallet:   wallet,
		notifier: notifier,
		policy:   policy,
		logger:   log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, passengerID, rideID primitive.ObjectID, seats int) (*models.Booking, error) {
	if seats < 1 || seats > utils.MaxSeatsPerBooking {
		return nil, ErrInvalidSeats
	}

	var booking *models.Booking
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		ride, err := s.repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return ErrRideNotFound
			}
			return err
		}
		if ride.IsOwnedBy(passengerID) {
			return ErrSelfBooking
		}

		token, err := s.capacity.ReserveSeats(ctx, rideID, seats)
		if err != nil {
			return err
		}

		booking = &models.Booking{
			ID:          primitive.NewObjectID(),
			RideID:      rideID,
			DriverID:    token.DriverID,
			PassengerID: passengerID,
			Seats:       seats,
			TotalPrice:  int64(seats) * token.PricePerSeat,
			Status:      models.BookingStatusPending,
		}

		hold, err := s.wallet.Hold(ctx, passengerID, booking.TotalPrice, booking.ID)
		if err != nil {
			return err
		}
		booking.HoldTransactionID = hold.TransactionID

		return s.repos.Bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.wallet.RefreshBalance(ctx, passengerID)
	s.notifier.NotifyBooking(ctx, utils.EventBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) ApproveBooking(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error) {
	var booking *models.Booking
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.DriverID != driverID {
			return ErrForbidden
		}

		booking, err = s.transition(ctx, current, models.BookingStatusApproved, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyBooking(ctx, utils.EventBookingApproved, booking)
	return booking, nil
}

func (s *bookingService) RejectBooking(ctx context.Context, driverID, bookingID primitive.ObjectID, reason string) (*models.Booking, error) {
	var booking *models.Booking
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.DriverID != driverID {
			return ErrForbidden
		}

		refundBps, err := s.policy.RefundBps(models.CancelledByRejection)
		if err != nil {
			return err
		}
		refund, err := RefundAmount(current.TotalPrice, refundBps)
		if err != nil {
			return err
		}

		booking, err = s.transition(ctx, current, models.BookingStatusRejected, &models.BookingUpdate{
			CancelledBy:        models.CancelledByRejection,
			CancellationReason: reason,
			RefundAmount:       refund,
			CancellationFee:    current.TotalPrice - refund,
		})
		if err != nil {
			return err
		}

		if _, err := s.capacity.ReleaseSeats(ctx, bookingID); err != nil {
			return err
		}
		booking.SeatsReleased = true
		// a full refund is a plain release of the hold
		if refundBps == utils.BasisPointsScale {
			_, err = s.wallet.Release(ctx, bookingID)
		} else {
			_, err = s.wallet.Refund(ctx, bookingID, refundBps)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.wallet.RefreshBalance(ctx, booking.PassengerID)
	s.notifier.NotifyBooking(ctx, utils.EventBookingRejected, booking)
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actorID, bookingID primitive.ObjectID, reason string) (*models.Booking, error) {
	var booking *models.Booking
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		var cancelledBy models.CancelledBy
		switch actorID {
		case current.PassengerID:
			cancelledBy = models.CancelledByPassenger
		case current.DriverID:
			cancelledBy = models.CancelledByDriver
		default:
			return ErrForbidden
		}

		refundBps, err := s.policy.RefundBps(cancelledBy)
		if err != nil {
			return err
		}
		refund, err := RefundAmount(current.TotalPrice, refundBps)
		if err != nil {
			return err
		}

		booking, err = s.transition(ctx, current, models.BookingStatusCancelled, &models.BookingUpdate{
			CancelledBy:        cancelledBy,
			CancellationReason: reason,
			RefundAmount:       refund,
			CancellationFee:    current.TotalPrice - refund,
		})
		if err != nil {
			return err
		}

		if _, err := s.capacity.ReleaseSeats(ctx, bookingID); err != nil {
			return err
		}
		booking.SeatsReleased = true
		_, err = s.wallet.Refund(ctx, bookingID, refundBps)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.wallet.RefreshBalance(ctx, booking.PassengerID)
	s.notifier.NotifyBooking(ctx, utils.EventBookingCancelled, booking)
	return booking, nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	var booking *models.Booking
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		ride, err := s.repos.Rides.GetByID(ctx, current.RideID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return ErrRideNotFound
			}
			return err
		}
		if ride.Status != models.RideStatusCompleted {
			return fmt.Errorf("%w: ride is %s", ErrInvalidTransition, ride.Status)
		}

		booking, err = s.transition(ctx, current, models.BookingStatusCompleted, nil)
		if err != nil {
			return err
		}

		_, err = s.wallet.Settle(ctx, bookingID, current.DriverID, s.policy.PlatformFeeBps)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.wallet.RefreshBalance(ctx, booking.PassengerID, booking.DriverID)
	s.notifier.NotifyBooking(ctx, utils.EventBookingCompleted, booking)
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsParticipant(userID) {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *bookingService) GetPassengerBookings(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.repos.Bookings.ListByPassenger(ctx, passengerID, params)
}

func (s *bookingService) getBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// transition checks the move against the state machine, then applies it with
// a compare-and-swap on the stored status so a concurrent transition loses.
func (s *bookingService) transition(ctx context.Context, booking *models.Booking, to models.BookingStatus, update *models.BookingUpdate) (*models.Booking, error) {
	if !models.CanTransition(booking.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, booking.Status, to)
	}

	if update == nil {
		update = &models.BookingUpdate{}
	}
	update.At = time.Now()

	updated, err := s.repos.Bookings.Transition(ctx, booking.ID, models.SourceStatuses(to), to, update)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrConditionFailed):
			return nil, fmt.Errorf("%w: booking changed concurrently", ErrInvalidTransition)
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return updated, nil
}
