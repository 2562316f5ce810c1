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

type walletRepository struct {
	collection *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) interfaces.WalletRepository {
	return &walletRepository{
		collection: db.Collection("wallets"),
	}
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	return findOne[models.Wallet](ctx, r.collection, bson.M{"user_id": userID}, "wallet")
}

func (r *walletRepository) Ensure(ctx context.Context, userID primitive.ObjectID, currency string) (*models.Wallet, error) {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":               primitive.NewObjectID(),
			"user_id":           userID,
			"available_balance": int64(0),
			"held_amount":       int64(0),
			"version":           int64(0),
			"currency":          currency,
			"created_at":        now,
			"updated_at":        now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&wallet)
	if err != nil {
		// two concurrent upserts can race on the unique user_id index
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) ApplyDelta(ctx context.Context, userID primitive.ObjectID, availableDelta, heldDelta int64) (*models.Wallet, error) {
	guard := bson.M{}
	if availableDelta < 0 {
		guard["available_balance"] = bson.M{"$gte": -availableDelta}
	}
	if heldDelta < 0 {
		guard["held_amount"] = bson.M{"$gte": -heldDelta}
	}

	update := bson.M{
		"$inc": bson.M{
			"available_balance": availableDelta,
			"held_amount":       heldDelta,
			"version":           int64(1),
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	return conditionalUpdate[models.Wallet](ctx, r.collection, bson.M{"user_id": userID}, guard, update, "wallet")
}

func (r *walletRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Wallet, int64, error) {
	return findPage[models.Wallet](ctx, r.collection, bson.M{}, params, "wallets")
}
