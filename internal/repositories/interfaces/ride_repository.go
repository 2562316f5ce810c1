package interfaces

import (
	"context"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	ListByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	ListByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error)

	// ReserveSeats decrements available seats in one conditional update that
	// matches only a bookable ride with enough seats left. Returns
	// ErrConditionFailed when the guard does not match.
	ReserveSeats(ctx context.Context, id primitive.ObjectID, seats int) (*models.Ride, error)
	// RestoreSeats increments available seats without exceeding total seats.
	RestoreSeats(ctx context.Context, id primitive.ObjectID, seats int) (*models.Ride, error)
	// TransitionStatus moves the ride to a new status only from one of from.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.RideStatus, to models.RideStatus, at time.Time) (*models.Ride, error)
}
