package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedRide(t *testing.T, repos *interfaces.Repositories, seats int) *models.Ride {
	t.Helper()
	ride := &models.Ride{
		DriverID:       primitive.NewObjectID(),
		TotalSeats:     seats,
		AvailableSeats: seats,
		PricePerSeat:   30000,
		Currency:       utils.DefaultCurrency,
		Status:         models.RideStatusActive,
	}
	require.NoError(t, repos.Rides.Create(context.Background(), ride))
	return ride
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	store := NewStore()
	repos := NewRepositories(store)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := repos.Wallets.Ensure(ctx, userID, utils.DefaultCurrency)
	require.NoError(t, err)
	_, err = repos.Wallets.ApplyDelta(ctx, userID, 1000, 0)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := repos.Wallets.ApplyDelta(ctx, userID, -400, 400); err != nil {
			return err
		}
		tx := models.NewTransaction(userID, models.TransactionTypeHold, 400, nil)
		if err := repos.Transactions.Append(ctx, tx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	wallet, err := repos.Wallets.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), wallet.AvailableBalance)
	require.Zero(t, wallet.HeldAmount)

	sums, err := repos.Transactions.SumByOwner(ctx, userID)
	require.NoError(t, err)
	require.Zero(t, sums.Count)
}

func TestWithTransactionJoinsOuterTransaction(t *testing.T) {
	store := NewStore()
	repos := NewRepositories(store)
	ride := seedRide(t, repos, 3)

	err := repos.Tx.WithTransaction(context.Background(), func(ctx context.Context) error {
		return repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := repos.Rides.ReserveSeats(ctx, ride.ID, 1)
			return err
		})
	})
	require.NoError(t, err)

	got, err := repos.Rides.GetByID(context.Background(), ride.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableSeats)
}

func TestWithTransactionExpiredContext(t *testing.T) {
	store := NewStore()
	repos := NewRepositories(store)
	ride := seedRide(t, repos, 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	err := repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := repos.Rides.ReserveSeats(ctx, ride.ID, 1); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	got, err := repos.Rides.GetByID(context.Background(), ride.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableSeats)
}

func TestReserveSeatsGuard(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	ride := seedRide(t, repos, 2)

	_, err := repos.Rides.ReserveSeats(ctx, ride.ID, 3)
	require.ErrorIs(t, err, interfaces.ErrConditionFailed)

	got, err := repos.Rides.ReserveSeats(ctx, ride.ID, 2)
	require.NoError(t, err)
	require.Zero(t, got.AvailableSeats)
	require.Equal(t, models.RideStatusFull, got.Status)

	got, err = repos.Rides.RestoreSeats(ctx, ride.ID, 1)
	require.NoError(t, err)
	require.Equal(t, models.RideStatusActive, got.Status)

	_, err = repos.Rides.RestoreSeats(ctx, ride.ID, 2)
	require.ErrorIs(t, err, interfaces.ErrConditionFailed)
}

func TestReserveSeatsConcurrent(t *testing.T) {
	repos := NewRepositories(NewStore())
	ride := seedRide(t, repos, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repos.Rides.ReserveSeats(context.Background(), ride.ID, 1); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 5, won)
	got, err := repos.Rides.GetByID(context.Background(), ride.ID)
	require.NoError(t, err)
	require.Zero(t, got.AvailableSeats)
}

func TestApplyDeltaRejectsNegativeBalance(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := repos.Wallets.ApplyDelta(ctx, userID, 10, 0)
	require.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = repos.Wallets.Ensure(ctx, userID, utils.DefaultCurrency)
	require.NoError(t, err)
	_, err = repos.Wallets.ApplyDelta(ctx, userID, -1, 1)
	require.ErrorIs(t, err, interfaces.ErrConditionFailed)
}

func TestHoldAndBookingCompareAndSwap(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	bookingID := primitive.NewObjectID()

	hold := &models.Hold{BookingID: bookingID, UserID: primitive.NewObjectID(), Amount: 500, Status: models.HoldStatusActive}
	require.NoError(t, repos.Holds.Create(ctx, hold))
	require.ErrorIs(t, repos.Holds.Create(ctx, &models.Hold{BookingID: bookingID}), interfaces.ErrDuplicate)

	_, err := repos.Holds.Transition(ctx, bookingID, models.HoldStatusActive, models.HoldStatusReleased)
	require.NoError(t, err)
	_, err = repos.Holds.Transition(ctx, bookingID, models.HoldStatusActive, models.HoldStatusSettled)
	require.ErrorIs(t, err, interfaces.ErrConditionFailed)

	booking := &models.Booking{ID: bookingID, RideID: primitive.NewObjectID(), Seats: 1, Status: models.BookingStatusPending}
	require.NoError(t, repos.Bookings.Create(ctx, booking))
	_, err = repos.Bookings.MarkSeatsReleased(ctx, bookingID)
	require.NoError(t, err)
	_, err = repos.Bookings.MarkSeatsReleased(ctx, bookingID)
	require.ErrorIs(t, err, interfaces.ErrConditionFailed)

	updated, err := repos.Bookings.Transition(ctx, bookingID, models.SourceStatuses(models.BookingStatusCancelled), models.BookingStatusCancelled,
		&models.BookingUpdate{CancelledBy: models.CancelledByPassenger, RefundAmount: 400, CancellationFee: 100})
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusCancelled, updated.Status)
	require.NotNil(t, updated.ClosedAt)

	_, err = repos.Bookings.Transition(ctx, bookingID, models.SourceStatuses(models.BookingStatusCompleted), models.BookingStatusCompleted, nil)
	require.ErrorIs(t, err, interfaces.ErrConditionFailed)
}

func TestRatingAggregateIsolation(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := repos.Ratings.AddToAggregate(ctx, userID, 5, map[string]int{"safety": 4})
	require.NoError(t, err)
	agg, err := repos.Ratings.AddToAggregate(ctx, userID, 3, map[string]int{"safety": 2})
	require.NoError(t, err)

	// mutating a returned copy must not leak into the store
	agg.Categories["safety"].Sum = 999

	stored, err := repos.Ratings.GetAggregate(ctx, userID)
	require.NoError(t, err)
	stored.ComputeAverages()
	require.Equal(t, int64(2), stored.Count)
	require.Equal(t, 4.0, stored.Average)
	require.Equal(t, int64(6), stored.Categories["safety"].Sum)
	require.Equal(t, 3.0, stored.Categories["safety"].Average)
}
