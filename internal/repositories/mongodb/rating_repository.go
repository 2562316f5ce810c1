package mongodb

import (
	"context"
	"fmt"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ratingRepository struct {
	collection *mongo.Collection
	aggregates *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) interfaces.RatingRepository {
	return &ratingRepository{
		collection: db.Collection("ratings"),
		aggregates: db.Collection("rating_aggregates"),
	}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.ID.IsZero() {
		rating.ID = primitive.NewObjectID()
	}
	rating.CreatedAt = time.Now()

	_, err := insertUnique(ctx, r.collection, rating, "rating")
	return err
}

func (r *ratingRepository) GetByRatedID(ctx context.Context, ratedID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	return findPage[models.Rating](ctx, r.collection, bson.M{"rated_user_id": ratedID}, params, "ratings")
}

func (r *ratingRepository) GetAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error) {
	aggregate, err := findOne[models.RatingAggregate](ctx, r.aggregates, bson.M{"user_id": userID}, "rating aggregate")
	if err != nil {
		return nil, err
	}
	if aggregate.Categories == nil {
		aggregate.Categories = make(map[string]*models.CategoryAggregate)
	}
	return aggregate, nil
}

// AddToAggregate relies on category names being validated upstream; they are
// used as field path segments.
func (r *ratingRepository) AddToAggregate(ctx context.Context, userID primitive.ObjectID, rating int, categories map[string]int) (*models.RatingAggregate, error) {
	inc := bson.M{
		"count": int64(1),
		"sum":   int64(rating),
	}
	for name, value := range categories {
		inc["categories."+name+".count"] = int64(1)
		inc["categories."+name+".sum"] = int64(value)
	}

	update := bson.M{
		"$inc":         inc,
		"$set":         bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{"user_id": userID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var aggregate models.RatingAggregate
	err := r.aggregates.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&aggregate)
	if err != nil {
		return nil, fmt.Errorf("failed to update rating aggregate: %w", err)
	}
	if aggregate.Categories == nil {
		aggregate.Categories = make(map[string]*models.CategoryAggregate)
	}
	return &aggregate, nil
}
