package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusDraft      RideStatus = "draft"
	RideStatusActive     RideStatus = "active"
	RideStatusFull       RideStatus = "full"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

// BookableRideStatuses are the statuses in which seats may be reserved.
// A full ride stays in the list so the seat guard, not the status, decides.
var BookableRideStatuses = []RideStatus{RideStatusActive, RideStatusFull}

type Ride struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID       primitive.ObjectID `json:"driver_id" bson:"driver_id" validate:"required"`
	Origin         string             `json:"origin" bson:"origin"`
	Destination    string             `json:"destination" bson:"destination"`
	TotalSeats     int                `json:"total_seats" bson:"total_seats" validate:"required,min=1"`
	AvailableSeats int                `json:"available_seats" bson:"available_seats"`
	PricePerSeat   int64              `json:"price_per_seat" bson:"price_per_seat" validate:"required,gt=0"`
	Currency       string             `json:"currency" bson:"currency" default:"MNT"`
	DepartureTime  time.Time          `json:"departure_time" bson:"departure_time"`
	Status         RideStatus         `json:"status" bson:"status" default:"active"`
	StartedAt      *time.Time         `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt    *time.Time         `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

func (r *Ride) IsBookable() bool {
	for _, s := range BookableRideStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

func (r *Ride) IsOwnedBy(userID primitive.ObjectID) bool {
	return r.DriverID == userID
}

// ReservationToken is handed back by a successful seat reservation.
type ReservationToken struct {
	Token          string             `json:"token"`
	RideID         primitive.ObjectID `json:"ride_id"`
	Seats          int                `json:"seats"`
	RemainingSeats int                `json:"remaining_seats"`
	PricePerSeat   int64              `json:"price_per_seat"`
	DriverID       primitive.ObjectID `json:"driver_id"`
	ReservedAt     time.Time          `json:"reserved_at"`
}

// RideCloseSummary reports what happened to a ride's bookings when it ended or
// was cancelled.
type RideCloseSummary struct {
	RideID    primitive.ObjectID   `json:"ride_id"`
	Status    RideStatus           `json:"status"`
	Completed []primitive.ObjectID `json:"completed"`
	Rejected  []primitive.ObjectID `json:"rejected"`
	Cancelled []primitive.ObjectID `json:"cancelled"`
	Failed    []primitive.ObjectID `json:"failed,omitempty"`
}
