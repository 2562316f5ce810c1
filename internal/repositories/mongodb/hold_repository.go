package mongodb

import (
	"context"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type holdRepository struct {
	collection *mongo.Collection
}

func NewHoldRepository(db *mongo.Database) interfaces.HoldRepository {
	return &holdRepository{
		collection: db.Collection("holds"),
	}
}

func (r *holdRepository) Create(ctx context.Context, hold *models.Hold) error {
	if hold.ID.IsZero() {
		hold.ID = primitive.NewObjectID()
	}
	hold.CreatedAt = time.Now()
	hold.UpdatedAt = hold.CreatedAt

	_, err := insertUnique(ctx, r.collection, hold, "hold")
	return err
}

func (r *holdRepository) GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Hold, error) {
	return findOne[models.Hold](ctx, r.collection, bson.M{"booking_id": bookingID}, "hold")
}

func (r *holdRepository) Transition(ctx context.Context, bookingID primitive.ObjectID, from, to models.HoldStatus) (*models.Hold, error) {
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	return conditionalUpdate[models.Hold](ctx, r.collection, bson.M{"booking_id": bookingID}, bson.M{"status": from}, update, "hold")
}

func (r *holdRepository) ListByStatus(ctx context.Context, status models.HoldStatus) ([]*models.Hold, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.Hold](ctx, r.collection, bson.M{"status": status}, opts, "holds")
}
