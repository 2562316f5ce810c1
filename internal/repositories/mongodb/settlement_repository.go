package mongodb

import (
	"context"
	"fmt"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type settlementRepository struct {
	collection *mongo.Collection
}

func NewSettlementRepository(db *mongo.Database) interfaces.SettlementRepository {
	return &settlementRepository{
		collection: db.Collection("settlements"),
	}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID.IsZero() {
		settlement.ID = primitive.NewObjectID()
	}
	settlement.CreatedAt = time.Now()

	_, err := insertUnique(ctx, r.collection, settlement, "settlement")
	return err
}

func (r *settlementRepository) GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Settlement, error) {
	return findOne[models.Settlement](ctx, r.collection, bson.M{"booking_id": bookingID}, "settlement")
}

func (r *settlementRepository) SummarizeByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.EarningsSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"driver_id": driverID}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"settlements":  bson.M{"$sum": 1},
			"gross":        bson.M{"$sum": "$gross_amount"},
			"platform_fee": bson.M{"$sum": "$platform_fee"},
			"net":          bson.M{"$sum": "$driver_net"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize earnings: %w", err)
	}
	defer cursor.Close(ctx)

	summary := &models.EarningsSummary{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(summary); err != nil {
			return nil, fmt.Errorf("failed to decode earnings summary: %w", err)
		}
	}
	return summary, nil
}
