package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "active"
	HoldStatusReleased HoldStatus = "released"
	HoldStatusRefunded HoldStatus = "refunded"
	HoldStatusSettled  HoldStatus = "settled"
)

// Hold earmarks passenger funds for exactly one booking.
type Hold struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingID     primitive.ObjectID `json:"booking_id" bson:"booking_id"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id"`
	Amount        int64              `json:"amount" bson:"amount"`
	Status        HoldStatus         `json:"status" bson:"status"`
	TransactionID primitive.ObjectID `json:"transaction_id" bson:"transaction_id"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

func (h *Hold) IsActive() bool {
	return h.Status == HoldStatusActive
}
