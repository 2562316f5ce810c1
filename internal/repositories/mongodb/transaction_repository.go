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

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("transactions"),
	}
}

func (r *transactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return findOne[models.Transaction](ctx, r.collection, bson.M{"_id": id}, "transaction")
}

func (r *transactionRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return findPage[models.Transaction](ctx, r.collection, bson.M{"wallet_owner_id": ownerID}, params, "transactions")
}

func (r *transactionRepository) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Transaction](ctx, r.collection, bson.M{"booking_id": bookingID}, opts, "transactions")
}

func (r *transactionRepository) SumByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.LedgerSums, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"wallet_owner_id": ownerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"available": bson.M{"$sum": "$available_delta"},
			"held":      bson.M{"$sum": "$held_delta"},
			"count":     bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}
	defer cursor.Close(ctx)

	sums := &models.LedgerSums{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(sums); err != nil {
			return nil, fmt.Errorf("failed to decode transaction sums: %w", err)
		}
	}
	return sums, nil
}
