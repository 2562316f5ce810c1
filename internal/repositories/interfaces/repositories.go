package interfaces

// Repositories groups the ledger's stores behind one transaction manager.
type Repositories struct {
	Tx           TransactionManager
	Wallets      WalletRepository
	Transactions TransactionRepository
	Holds        HoldRepository
	Rides        RideRepository
	Bookings     BookingRepository
	Settlements  SettlementRepository
	Ratings      RatingRepository
}
