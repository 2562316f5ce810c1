package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/repositories/memory"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"
	"goride-ledger/pkg/websocket"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []websocket.Message
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, message websocket.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
	return nil
}

func (b *recordingBroadcaster) eventsFor(userID primitive.ObjectID) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var events []string
	for _, message := range b.messages {
		if message.RoomID == websocket.UserRoom(userID) {
			events = append(events, message.Type)
		}
	}
	return events
}

type fixture struct {
	repos          *interfaces.Repositories
	wallet         WalletService
	capacity       CapacityService
	bookings       BookingService
	rides          RideService
	ratings        RatingService
	reconciliation ReconciliationService
	broadcaster    *recordingBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, NewCacheService(nil, logger.NewNop()))
}

func newFixtureWithCache(t *testing.T, cache CacheService) *fixture {
	t.Helper()

	log := logger.NewNop()
	repos := memory.NewRepositories(memory.NewStore())
	broadcaster := &recordingBroadcaster{}
	notifier := NewNotificationService(broadcaster, utils.DefaultCurrency, log)

	wallet := NewWalletService(repos, cache, utils.DefaultCurrency, log)
	capacity := NewCapacityService(repos)
	bookings := NewBookingService(repos, capacity, wallet, notifier, DefaultFeePolicy(), log)
	rides := NewRideService(repos, bookings, notifier, utils.DefaultCurrency, log)

	return &fixture{
		repos:          repos,
		wallet:         wallet,
		capacity:       capacity,
		bookings:       bookings,
		rides:          rides,
		ratings:        NewRatingService(repos, cache, log),
		reconciliation: NewReconciliationService(repos, wallet, rides, log),
		broadcaster:    broadcaster,
	}
}

func (f *fixture) fundedUser(t *testing.T, amount int64) primitive.ObjectID {
	t.Helper()
	userID := primitive.NewObjectID()
	if amount > 0 {
		_, err := f.wallet.TopUp(context.Background(), userID, amount)
		require.NoError(t, err)
	}
	return userID
}

func (f *fixture) publishRide(t *testing.T, driverID primitive.ObjectID, seats int, price int64) *models.Ride {
	t.Helper()
	ride, err := f.rides.CreateRide(context.Background(), driverID, &CreateRideRequest{
		Origin:        "Ulaanbaatar",
		Destination:   "Darkhan",
		TotalSeats:    seats,
		PricePerSeat:  price,
		DepartureTime: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return ride
}

func (f *fixture) requireBalance(t *testing.T, userID primitive.ObjectID, available, held int64) {
	t.Helper()
	balance, err := f.wallet.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, available, balance.AvailableBalance, "available balance")
	require.Equal(t, held, balance.HeldAmount, "held amount")
}

func (f *fixture) requireConsistent(t *testing.T, userID primitive.ObjectID) {
	t.Helper()
	report, err := f.wallet.VerifyWallet(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, report.Consistent, "wallet %s diverged from its ledger: %+v vs %+v", userID.Hex(), report.Wallet, report.Ledger)
}

func (f *fixture) requireSeats(t *testing.T, rideID primitive.ObjectID, available int) *models.Ride {
	t.Helper()
	ride, err := f.rides.GetRide(context.Background(), rideID)
	require.NoError(t, err)
	require.Equal(t, available, ride.AvailableSeats, "available seats")
	return ride
}
