package interfaces

import (
	"context"

	"goride-ledger/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HoldRepository interface {
	// Create fails with ErrDuplicate if the booking already has a hold.
	Create(ctx context.Context, hold *models.Hold) error
	GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Hold, error)
	// Transition moves the hold from one status to another, or returns
	// ErrConditionFailed if the hold is not in the from status.
	Transition(ctx context.Context, bookingID primitive.ObjectID, from, to models.HoldStatus) (*models.Hold, error)
	ListByStatus(ctx context.Context, status models.HoldStatus) ([]*models.Hold, error)
}
