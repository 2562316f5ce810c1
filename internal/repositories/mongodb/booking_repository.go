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

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	_, err := insertUnique(ctx, r.collection, booking, "booking")
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return findOne[models.Booking](ctx, r.collection, bson.M{"_id": id}, "booking")
}

func (r *bookingRepository) ListByRide(ctx context.Context, rideID primitive.ObjectID, statuses ...models.BookingStatus) ([]*models.Booking, error) {
	filter := bson.M{"ride_id": rideID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Booking](ctx, r.collection, filter, opts, "bookings")
}

func (r *bookingRepository) ListByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return findPage[models.Booking](ctx, r.collection, bson.M{"passenger_id": passengerID}, params, "bookings")
}

func (r *bookingRepository) CountByDriver(ctx context.Context, driverID primitive.ObjectID, status models.BookingStatus, cancelledBy models.CancelledBy) (int64, error) {
	filter := bson.M{"driver_id": driverID, "status": status}
	if cancelledBy != "" {
		filter["cancelled_by"] = cancelledBy
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) Transition(ctx context.Context, id primitive.ObjectID, from []models.BookingStatus, to models.BookingStatus, update *models.BookingUpdate) (*models.Booking, error) {
	at := time.Now()
	set := bson.M{"status": to}
	if update != nil {
		if !update.At.IsZero() {
			at = update.At
		}
		if update.CancelledBy != "" {
			set["cancelled_by"] = update.CancelledBy
		}
		if update.CancellationReason != "" {
			set["cancellation_reason"] = update.CancellationReason
		}
		set["refund_amount"] = update.RefundAmount
		set["cancellation_fee"] = update.CancellationFee
	}

	switch to {
	case models.BookingStatusApproved:
		set["approved_at"] = at
	case models.BookingStatusCompleted:
		set["completed_at"] = at
		set["closed_at"] = at
	case models.BookingStatusRejected, models.BookingStatusCancelled:
		set["closed_at"] = at
	}
	set["updated_at"] = at

	guard := bson.M{"status": bson.M{"$in": from}}
	return conditionalUpdate[models.Booking](ctx, r.collection, bson.M{"_id": id}, guard, bson.M{"$set": set}, "booking")
}

func (r *bookingRepository) MarkSeatsReleased(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	update := bson.M{"$set": bson.M{"seats_released": true, "updated_at": time.Now()}}
	guard := bson.M{"seats_released": bson.M{"$ne": true}}
	return conditionalUpdate[models.Booking](ctx, r.collection, bson.M{"_id": id}, guard, update, "booking")
}
