package mongodb

import (
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/pkg/database"
)

// NewRepositories binds every repository to one database; transactions are
// opened on its client.
func NewRepositories(db *database.MongoDB) *interfaces.Repositories {
	return &interfaces.Repositories{
		Tx:           db,
		Wallets:      NewWalletRepository(db.Database),
		Transactions: NewTransactionRepository(db.Database),
		Holds:        NewHoldRepository(db.Database),
		Rides:        NewRideRepository(db.Database),
		Bookings:     NewBookingRepository(db.Database),
		Settlements:  NewSettlementRepository(db.Database),
		Ratings:      NewRatingRepository(db.Database),
	}
}
