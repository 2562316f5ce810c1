package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet is the cached projection of a user's transaction log. All amounts are
// integers in the smallest currency unit.
type Wallet struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	AvailableBalance int64              `json:"available_balance" bson:"available_balance"`
	HeldAmount       int64              `json:"held_amount" bson:"held_amount"`
	Currency         string             `json:"currency" bson:"currency" default:"MNT"`
	Version          int64              `json:"version" bson:"version"` // bumped by every balance change
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// Total is the sum of spendable and held funds.
func (w *Wallet) Total() int64 {
	return w.AvailableBalance + w.HeldAmount
}

type WalletBalance struct {
	UserID           primitive.ObjectID `json:"user_id"`
	AvailableBalance int64              `json:"available_balance"`
	HeldAmount       int64              `json:"held_amount"`
	Currency         string             `json:"currency"`
	Version          int64              `json:"version"`
}

func (w *Wallet) Balance() *WalletBalance {
	return &WalletBalance{
		UserID:           w.UserID,
		AvailableBalance: w.AvailableBalance,
		HeldAmount:       w.HeldAmount,
		Currency:         w.Currency,
		Version:          w.Version,
	}
}
