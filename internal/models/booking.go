package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string
type CancelledBy string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"

	CancelledByDriver    CancelledBy = "driver"
	CancelledByPassenger CancelledBy = "passenger"
	CancelledByRejection CancelledBy = "rejection"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:  {BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusApproved: {BookingStatusCompleted, BookingStatusRejected, BookingStatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourceStatuses lists every status from which to is reachable.
func SourceStatuses(to BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range []BookingStatus{BookingStatusPending, BookingStatusApproved} {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled || s == BookingStatusCompleted
}

// OpenBookingStatuses hold seats and funds.
var OpenBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusApproved}

type Booking struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID             primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	DriverID           primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	PassengerID        primitive.ObjectID `json:"passenger_id" bson:"passenger_id" validate:"required"`
	Seats              int                `json:"seats" bson:"seats" validate:"required,min=1"`
	TotalPrice         int64              `json:"total_price" bson:"total_price"`
	Status             BookingStatus      `json:"status" bson:"status" default:"pending"`
	HoldTransactionID  primitive.ObjectID `json:"hold_transaction_id" bson:"hold_transaction_id"`
	SeatsReleased      bool               `json:"seats_released" bson:"seats_released"`
	CancelledBy        CancelledBy        `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancellationReason string             `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	RefundAmount       int64              `json:"refund_amount,omitempty" bson:"refund_amount,omitempty"`
	CancellationFee    int64              `json:"cancellation_fee,omitempty" bson:"cancellation_fee,omitempty"`
	ApprovedAt         *time.Time         `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	CompletedAt        *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	ClosedAt           *time.Time         `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) IsParticipant(userID primitive.ObjectID) bool {
	return b.PassengerID == userID || b.DriverID == userID
}

// Counterpart returns the other participant of the booking.
func (b *Booking) Counterpart(userID primitive.ObjectID) (primitive.ObjectID, bool) {
	switch userID {
	case b.PassengerID:
		return b.DriverID, true
	case b.DriverID:
		return b.PassengerID, true
	}
	return primitive.NilObjectID, false
}

// BookingUpdate carries the fields written together with a status transition.
type BookingUpdate struct {
	CancelledBy        CancelledBy
	CancellationReason string
	RefundAmount       int64
	CancellationFee    int64
	At                 time.Time
}
