package memory

import "goride-ledger/internal/repositories/interfaces"

// NewRepositories wires every repository to one shared store.
func NewRepositories(store *Store) *interfaces.Repositories {
	return &interfaces.Repositories{
		Tx:           store,
		Wallets:      NewWalletRepository(store),
		Transactions: NewTransactionRepository(store),
		Holds:        NewHoldRepository(store),
		Rides:        NewRideRepository(store),
		Bookings:     NewBookingRepository(store),
		Settlements:  NewSettlementRepository(store),
		Ratings:      NewRatingRepository(store),
	}
}
