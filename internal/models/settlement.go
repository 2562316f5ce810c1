package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settlement records the final split of a completed booking's hold.
type Settlement struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingID            primitive.ObjectID `json:"booking_id" bson:"booking_id"`
	PassengerID          primitive.ObjectID `json:"passenger_id" bson:"passenger_id"`
	DriverID             primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	GrossAmount          int64              `json:"gross_amount" bson:"gross_amount"`
	PlatformFee          int64              `json:"platform_fee" bson:"platform_fee"`
	DriverNet            int64              `json:"driver_net" bson:"driver_net"`
	FeeRateBps           int64              `json:"fee_rate_bps" bson:"fee_rate_bps"`
	PaymentTransactionID primitive.ObjectID `json:"payment_transaction_id" bson:"payment_transaction_id"`
	EarningTransactionID primitive.ObjectID `json:"earning_transaction_id" bson:"earning_transaction_id"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
}

type EarningsSummary struct {
	Settlements int64 `json:"settlements" bson:"settlements"`
	Gross       int64 `json:"gross" bson:"gross"`
	PlatformFee int64 `json:"platform_fee" bson:"platform_fee"`
	Net         int64 `json:"net" bson:"net"`
}

// RefundResult describes how a hold was split on release or refund.
type RefundResult struct {
	BookingID       primitive.ObjectID `json:"booking_id"`
	HeldAmount      int64              `json:"held_amount"`
	RefundAmount    int64              `json:"refund_amount"`
	CancellationFee int64              `json:"cancellation_fee"`
}
