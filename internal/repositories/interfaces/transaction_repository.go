package interfaces

import (
	"context"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionRepository is the append-only ledger. There is no update or delete.
type TransactionRepository interface {
	Append(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Transaction, error)
	SumByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.LedgerSums, error)
}
