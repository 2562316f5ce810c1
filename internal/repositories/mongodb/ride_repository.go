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

type rideRepository struct {
	collection *mongo.Collection
}

func NewRideRepository(db *mongo.Database) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt

	_, err := insertUnique(ctx, r.collection, ride, "ride")
	return err
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	return findOne[models.Ride](ctx, r.collection, bson.M{"_id": id}, "ride")
}

func (r *rideRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return findPage[models.Ride](ctx, r.collection, bson.M{"driver_id": driverID}, params, "rides")
}

func (r *rideRepository) ListByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.Ride](ctx, r.collection, bson.M{"status": status}, opts, "rides")
}

// ReserveSeats decrements the seat count and flips the ride to full in the
// same pipeline update, so the guard and the write cannot be interleaved.
func (r *rideRepository) ReserveSeats(ctx context.Context, id primitive.ObjectID, seats int) (*models.Ride, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("seats must be positive")
	}

	guard := bson.M{
		"status":          bson.M{"$in": models.BookableRideStatuses},
		"available_seats": bson.M{"$gte": seats},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"available_seats": bson.M{"$subtract": bson.A{"$available_seats", seats}},
			"updated_at":      time.Now(),
		}}},
		{{Key: "$set", Value: bson.M{
			"status": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$available_seats", 0}},
				models.RideStatusFull,
				"$status",
			}},
		}}},
	}

	return conditionalUpdate[models.Ride](ctx, r.collection, bson.M{"_id": id}, guard, update, "ride")
}

func (r *rideRepository) RestoreSeats(ctx context.Context, id primitive.ObjectID, seats int) (*models.Ride, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("seats must be positive")
	}

	guard := bson.M{
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$available_seats", seats}},
			"$total_seats",
		}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"available_seats": bson.M{"$add": bson.A{"$available_seats", seats}},
			"updated_at":      time.Now(),
		}}},
		{{Key: "$set", Value: bson.M{
			"status": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$status", models.RideStatusFull}},
					bson.M{"$gt": bson.A{"$available_seats", 0}},
				}},
				models.RideStatusActive,
				"$status",
			}},
		}}},
	}

	return conditionalUpdate[models.Ride](ctx, r.collection, bson.M{"_id": id}, guard, update, "ride")
}

func (r *rideRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.RideStatus, to models.RideStatus, at time.Time) (*models.Ride, error) {
	set := bson.M{"status": to, "updated_at": at}
	switch to {
	case models.RideStatusInProgress:
		set["started_at"] = at
	case models.RideStatusCompleted:
		set["completed_at"] = at
	case models.RideStatusCancelled:
		set["cancelled_at"] = at
	}

	guard := bson.M{"status": bson.M{"$in": from}}
	return conditionalUpdate[models.Ride](ctx, r.collection, bson.M{"_id": id}, guard, bson.M{"$set": set}, "ride")
}
