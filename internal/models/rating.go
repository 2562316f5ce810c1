package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is left by one booking participant for the other, once per booking.
type Rating struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingID   primitive.ObjectID `json:"booking_id" bson:"booking_id" validate:"required"`
	ReviewerID  primitive.ObjectID `json:"reviewer_id" bson:"reviewer_id" validate:"required"`
	RatedUserID primitive.ObjectID `json:"rated_user_id" bson:"rated_user_id" validate:"required"`
	Rating      int                `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Categories  map[string]int     `json:"categories,omitempty" bson:"categories,omitempty"`
	Comment     string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

type CategoryAggregate struct {
	Count   int64   `json:"count" bson:"count"`
	Sum     int64   `json:"sum" bson:"sum"`
	Average float64 `json:"average" bson:"-"`
}

// RatingAggregate keeps count and sum per user so averages can be maintained
// incrementally.
type RatingAggregate struct {
	UserID     primitive.ObjectID            `json:"user_id" bson:"user_id"`
	Count      int64                         `json:"count" bson:"count"`
	Sum        int64                         `json:"sum" bson:"sum"`
	Average    float64                       `json:"average" bson:"-"`
	Categories map[string]*CategoryAggregate `json:"categories" bson:"categories"`
	UpdatedAt  time.Time                     `json:"updated_at" bson:"updated_at"`
}

// ComputeAverages fills the derived averages, rounded to two decimals.
func (a *RatingAggregate) ComputeAverages() {
	a.Average = average(a.Sum, a.Count)
	for _, c := range a.Categories {
		c.Average = average(c.Sum, c.Count)
	}
}

func average(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*100) / 100
}

type DriverPerformance struct {
	DriverID          primitive.ObjectID `json:"driver_id"`
	Ratings           *RatingAggregate   `json:"ratings"`
	CompletedBookings int64              `json:"completed_bookings"`
	CancelledByDriver int64              `json:"cancelled_by_driver"`
	Earnings          *EarningsSummary   `json:"earnings"`
	CancellationRate  float64            `json:"cancellation_rate"`
}
