package interfaces

import (
	"context"

	"goride-ledger/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettlementRepository interface {
	// Create fails with ErrDuplicate when the booking was already settled.
	Create(ctx context.Context, settlement *models.Settlement) error
	GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Settlement, error)
	SummarizeByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.EarningsSummary, error)
}
