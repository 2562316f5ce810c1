package interfaces

import (
	"context"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingRepository interface {
	// Create fails with ErrDuplicate for a second rating on the same
	// (booking, reviewer) pair.
	Create(ctx context.Context, rating *models.Rating) error
	GetByRatedID(ctx context.Context, ratedID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error)

	GetAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error)
	// AddToAggregate folds one rating into the user's running count and sum.
	AddToAggregate(ctx context.Context, userID primitive.ObjectID, rating int, categories map[string]int) (*models.RatingAggregate, error)
}
