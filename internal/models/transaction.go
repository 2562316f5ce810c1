package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string

const (
	TransactionTypeTopUp      TransactionType = "topup"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeHold       TransactionType = "hold"
	TransactionTypeRelease    TransactionType = "release"
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeEarning    TransactionType = "earning"
)

// Transaction is an immutable ledger line owned by exactly one wallet.
//
// Amount is the signed face value (debits negative, credits positive).
// AvailableDelta and HeldDelta are the effects on the wallet projection;
// replaying them over the whole log must reproduce the wallet.
//
//	topup       +a   avail +a
//	withdrawal  -a   avail -a
//	hold        -a   avail -a  held +a
//	release     +a   avail +a  held -a
//	refund      +r   avail +r  held -r
//	payment     -p             held -p
//	earning     +e   avail +e
type Transaction struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	WalletOwnerID  primitive.ObjectID  `json:"wallet_owner_id" bson:"wallet_owner_id" validate:"required"`
	Type           TransactionType     `json:"type" bson:"type" validate:"required"`
	Amount         int64               `json:"amount" bson:"amount"`
	AvailableDelta int64               `json:"available_delta" bson:"available_delta"`
	HeldDelta      int64               `json:"held_delta" bson:"held_delta"`
	BookingID      *primitive.ObjectID `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	Description    string              `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
}

// LedgerSums is the result of replaying a wallet's transaction log.
type LedgerSums struct {
	Available int64 `json:"available" bson:"available"`
	Held      int64 `json:"held" bson:"held"`
	Count     int64 `json:"count" bson:"count"`
}

// NewTransaction builds a ledger line with the deltas implied by its type.
func NewTransaction(ownerID primitive.ObjectID, txType TransactionType, amount int64, bookingID *primitive.ObjectID) *Transaction {
	tx := &Transaction{
		WalletOwnerID: ownerID,
		Type:          txType,
		BookingID:     bookingID,
	}

	switch txType {
	case TransactionTypeTopUp, TransactionTypeEarning:
		tx.Amount = amount
		tx.AvailableDelta = amount
	case TransactionTypeWithdrawal:
		tx.Amount = -amount
		tx.AvailableDelta = -amount
	case TransactionTypeHold:
		tx.Amount = -amount
		tx.AvailableDelta = -amount
		tx.HeldDelta = amount
	case TransactionTypeRelease, TransactionTypeRefund:
		tx.Amount = amount
		tx.AvailableDelta = amount
		tx.HeldDelta = -amount
	case TransactionTypePayment:
		tx.Amount = -amount
		tx.HeldDelta = -amount
	}

	return tx
}
