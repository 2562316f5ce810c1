package interfaces

import (
	"context"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)
	// Ensure returns the user's wallet, creating an empty one on first use.
	Ensure(ctx context.Context, userID primitive.ObjectID, currency string) (*models.Wallet, error)
	// ApplyDelta adds the deltas to the projection only if neither balance
	// would go negative; otherwise it returns ErrConditionFailed.
	ApplyDelta(ctx context.Context, userID primitive.ObjectID, availableDelta, heldDelta int64) (*models.Wallet, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Wallet, int64, error)
}
