package interfaces

import (
	"context"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	ListByRide(ctx context.Context, rideID primitive.ObjectID, statuses ...models.BookingStatus) ([]*models.Booking, error)
	ListByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	CountByDriver(ctx context.Context, driverID primitive.ObjectID, status models.BookingStatus, cancelledBy models.CancelledBy) (int64, error)

	// Transition moves the booking to status to only from one of from and
	// returns ErrConditionFailed otherwise.
	Transition(ctx context.Context, id primitive.ObjectID, from []models.BookingStatus, to models.BookingStatus, update *models.BookingUpdate) (*models.Booking, error)
	// MarkSeatsReleased flips seats_released once; a second call returns
	// ErrConditionFailed.
	MarkSeatsReleased(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
}
