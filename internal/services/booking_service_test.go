package services

import (
	"context"
	"sync"
	"testing"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookingEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	driverID := primitive.NewObjectID()
	passengerID := f.fundedUser(t, 100000)
	ride := f.publishRide(t, driverID, 4, 30000)

	booking, err := f.bookings.CreateBooking(ctx, passengerID, ride.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, int64(60000), booking.TotalPrice)
	assert.False(t, booking.HoldTransactionID.IsZero())
	f.requireBalance(t, passengerID, 40000, 60000)
	f.requireSeats(t, ride.ID, 2)

	booking, err = f.bookings.ApproveBooking(ctx, driverID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusApproved, booking.Status)
	f.requireBalance(t, passengerID, 40000, 60000)

	_, err = f.rides.StartRide(ctx, driverID, ride.ID)
	require.NoError(t, err)

	summary, err := f.rides.EndRide(ctx, driverID, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{booking.ID}, summary.Completed)
	assert.Empty(t, summary.Failed)

	f.requireBalance(t, passengerID, 40000, 0)
	f.requireBalance(t, driverID, 54000, 0)
	f.requireConsistent(t, passengerID)
	f.requireConsistent(t, driverID)

	completed, err := f.bookings.GetBooking(ctx, passengerID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	settlement, err := f.repos.Settlements.GetByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), settlement.PlatformFee)

	assert.Equal(t, []string{
		utils.EventBookingCreated,
		utils.EventBookingApproved,
		utils.EventBookingCompleted,
	}, f.broadcaster.eventsFor(passengerID))
}

func TestLastSeatRaceHasExactlyOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ride := f.publishRide(t, primitive.NewObjectID(), 1, 30000)

	const contenders = 8
	passengers := make([]primitive.ObjectID, contenders)
	for i := range passengers {
		passengers[i] = f.fundedUser(t, 30000)
	}

	errs := make([]error, contenders)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range passengers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.bookings.CreateBooking(ctx, passengers[i], ride.ID, 1)
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i, err := range errs {
		if err == nil {
			winners++
			f.requireBalance(t, passengers[i], 0, 30000)
			continue
		}
		require.ErrorIs(t, err, ErrSeatsUnavailable)
		f.requireBalance(t, passengers[i], 30000, 0)
		f.requireConsistent(t, passengers[i])
	}
	assert.Equal(t, 1, winners)

	full := f.requireSeats(t, ride.ID, 0)
	assert.Equal(t, models.RideStatusFull, full.Status)
}

func TestFailedBookingLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	ride := f.publishRide(t, driverID, 3, 30000)
	passengerID := f.fundedUser(t, 10000)

	_, err := f.bookings.CreateBooking(ctx, passengerID, ride.ID, 2)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	f.requireSeats(t, ride.ID, 3)
	f.requireBalance(t, passengerID, 10000, 0)

	bookings, total, err := f.bookings.GetPassengerBookings(ctx, passengerID, utils.DefaultPagination())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, bookings)

	holds, err := f.repos.Holds.ListByStatus(ctx, models.HoldStatusActive)
	require.NoError(t, err)
	assert.Empty(t, holds)

	_, err = f.bookings.CreateBooking(ctx, passengerID, ride.ID, 4)
	require.ErrorIs(t, err, ErrSeatsUnavailable)
	_, err = f.bookings.CreateBooking(ctx, passengerID, ride.ID, 0)
	require.ErrorIs(t, err, ErrInvalidSeats)
	_, err = f.bookings.CreateBooking(ctx, passengerID, primitive.NewObjectID(), 1)
	require.ErrorIs(t, err, ErrRideNotFound)
	_, err = f.bookings.CreateBooking(ctx, driverID, ride.ID, 1)
	require.ErrorIs(t, err, ErrSelfBooking)

	f.requireSeats(t, ride.ID, 3)
}

func TestCancellationPolicies(t *testing.T) {
	tests := []struct {
		name      string
		approve   bool
		byDriver  bool
		reject    bool
		wantBy    models.CancelledBy
		wantAvail int64
	}{
		{name: "passenger cancels pending", wantBy: models.CancelledByPassenger, wantAvail: 88000},
		{name: "passenger cancels approved", approve: true, wantBy: models.CancelledByPassenger, wantAvail: 88000},
		{name: "driver cancels approved", approve: true, byDriver: true, wantBy: models.CancelledByDriver, wantAvail: 100000},
		{name: "driver rejects pending", reject: true, wantBy: models.CancelledByRejection, wantAvail: 100000},
		{name: "driver rejects approved", approve: true, reject: true, wantBy: models.CancelledByRejection, wantAvail: 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			driverID := primitive.NewObjectID()
			passengerID := f.fundedUser(t, 100000)
			ride := f.publishRide(t, driverID, 2, 30000)

			booking, err := f.bookings.CreateBooking(ctx, passengerID, ride.ID, 2)
			require.NoError(t, err)
			assert.Equal(t, models.RideStatusFull, f.requireSeats(t, ride.ID, 0).Status)

			if tt.approve {
				_, err = f.bookings.ApproveBooking(ctx, driverID, booking.ID)
				require.NoError(t, err)
			}

			var closed *models.Booking
			switch {
			case tt.reject:
				closed, err = f.bookings.RejectBooking(ctx, driverID, booking.ID, "no luggage space")
			case tt.byDriver:
				closed, err = f.bookings.CancelBooking(ctx, driverID, booking.ID, "car trouble")
			default:
				closed, err = f.bookings.CancelBooking(ctx, passengerID, booking.ID, "plans changed")
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBy, closed.CancelledBy)
			assert.Equal(t, tt.wantAvail-40000, closed.RefundAmount)
			assert.Equal(t, 60000-closed.RefundAmount, closed.CancellationFee)
			assert.True(t, closed.SeatsReleased)

			f.requireBalance(t, passengerID, tt.wantAvail, 0)
			f.requireConsistent(t, passengerID)
			reopened := f.requireSeats(t, ride.ID, 2)
			assert.Equal(t, models.RideStatusActive, reopened.Status)

			// a closed booking is final: no second refund, no second seat release
			_, err = f.bookings.CancelBooking(ctx, passengerID, booking.ID, "again")
			require.ErrorIs(t, err, ErrInvalidTransition)
			_, err = f.bookings.RejectBooking(ctx, driverID, booking.ID, "again")
			require.ErrorIs(t, err, ErrInvalidTransition)
			_, err = f.bookings.ApproveBooking(ctx, driverID, booking.ID)
			require.ErrorIs(t, err, ErrInvalidTransition)

			f.requireBalance(t, passengerID, tt.wantAvail, 0)
			f.requireSeats(t, ride.ID, 2)
		})
	}
}

func TestRejectionFollowsConfiguredRefund(t *testing.T) {
	tests := []struct {
		name       string
		refundBps  int64
		wantRefund int64
		wantHold   models.HoldStatus
		wantTypes  []models.TransactionType
	}{
		{
			name:       "full refund releases the hold",
			refundBps:  10000,
			wantRefund: 60000,
			wantHold:   models.HoldStatusReleased,
			wantTypes:  []models.TransactionType{models.TransactionTypeRelease},
		},
		{
			name:       "partial refund forfeits the rest",
			refundBps:  9000,
			wantRefund: 54000,
			wantHold:   models.HoldStatusRefunded,
			wantTypes:  []models.TransactionType{models.TransactionTypeRefund, models.TransactionTypePayment},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			log := logger.NewNop()
			policy := DefaultFeePolicy()
			policy.RejectionRefundBps = tt.refundBps
			bookings := NewBookingService(f.repos, f.capacity, f.wallet,
				NewNotificationService(&recordingBroadcaster{}, utils.DefaultCurrency, log), policy, log)

			driverID := primitive.NewObjectID()
			passengerID := f.fundedUser(t, 100000)
			ride := f.publishRide(t, driverID, 2, 30000)

			booking, err := bookings.CreateBooking(ctx, passengerID, ride.ID, 2)
			require.NoError(t, err)

			rejected, err := bookings.RejectBooking(ctx, driverID, booking.ID, "no luggage space")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRefund, rejected.RefundAmount)
			assert.Equal(t, 60000-tt.wantRefund, rejected.CancellationFee)

			f.requireBalance(t, passengerID, 40000+tt.wantRefund, 0)
			f.requireConsistent(t, passengerID)
			f.requireSeats(t, ride.ID, 2)

			hold, err := f.repos.Holds.GetByBookingID(ctx, booking.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHold, hold.Status)

			txs, _, err := f.wallet.GetTransactions(ctx, passengerID, utils.DefaultPagination())
			require.NoError(t, err)
			var closing []models.TransactionType
			for _, tx := range txs {
				if tx.BookingID != nil && *tx.BookingID == booking.ID && tx.Type != models.TransactionTypeHold {
					closing = append(closing, tx.Type)
				}
			}
			assert.ElementsMatch(t, tt.wantTypes, closing)
		})
	}
}

func TestBookingOwnershipGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	passengerID := f.fundedUser(t, 30000)
	strangerID := primitive.NewObjectID()
	ride := f.publishRide(t, driverID, 2, 30000)

	booking, err := f.bookings.CreateBooking(ctx, passengerID, ride.ID, 1)
	require.NoError(t, err)

	_, err = f.bookings.ApproveBooking(ctx, passengerID, booking.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.bookings.RejectBooking(ctx, strangerID, booking.ID, "")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.bookings.CancelBooking(ctx, strangerID, booking.ID, "")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.bookings.GetBooking(ctx, strangerID, booking.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.bookings.ApproveBooking(ctx, driverID, primitive.NewObjectID())
	require.ErrorIs(t, err, ErrBookingNotFound)

	got, err := f.bookings.GetBooking(ctx, driverID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, got.Status)
}

func TestCompleteRequiresCompletedRide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	passengerID := f.fundedUser(t, 30000)
	ride := f.publishRide(t, driverID, 2, 30000)

	booking, err := f.bookings.CreateBooking(ctx, passengerID, ride.ID, 1)
	require.NoError(t, err)

	_, err = f.bookings.CompleteBooking(ctx, booking.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.bookings.ApproveBooking(ctx, driverID, booking.ID)
	require.NoError(t, err)
	_, err = f.bookings.CompleteBooking(ctx, booking.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	f.requireBalance(t, passengerID, 0, 30000)
	f.requireBalance(t, driverID, 0, 0)
}

func TestEndRideRejectsPendingBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	approvedPassenger := f.fundedUser(t, 30000)
	pendingPassenger := f.fundedUser(t, 30000)
	ride := f.publishRide(t, driverID, 3, 30000)

	approved, err := f.bookings.CreateBooking(ctx, approvedPassenger, ride.ID, 1)
	require.NoError(t, err)
	_, err = f.bookings.ApproveBooking(ctx, driverID, approved.ID)
	require.NoError(t, err)
	pending, err := f.bookings.CreateBooking(ctx, pendingPassenger, ride.ID, 1)
	require.NoError(t, err)

	_, err = f.rides.EndRide(ctx, driverID, ride.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.rides.StartRide(ctx, driverID, ride.ID)
	require.NoError(t, err)
	_, err = f.bookings.CreateBooking(ctx, pendingPassenger, ride.ID, 1)
	require.ErrorIs(t, err, ErrRideNotBookable)

	summary, err := f.rides.EndRide(ctx, driverID, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{approved.ID}, summary.Completed)
	assert.Equal(t, []primitive.ObjectID{pending.ID}, summary.Rejected)

	f.requireBalance(t, approvedPassenger, 0, 0)
	f.requireBalance(t, pendingPassenger, 30000, 0)
	f.requireBalance(t, driverID, 27000, 0)

	holds, err := f.repos.Holds.ListByStatus(ctx, models.HoldStatusActive)
	require.NoError(t, err)
	assert.Empty(t, holds)
}

func TestCancelRideRefundsEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	first := f.fundedUser(t, 60000)
	second := f.fundedUser(t, 30000)
	ride := f.publishRide(t, driverID, 3, 30000)

	b1, err := f.bookings.CreateBooking(ctx, first, ride.ID, 2)
	require.NoError(t, err)
	_, err = f.bookings.ApproveBooking(ctx, driverID, b1.ID)
	require.NoError(t, err)
	_, err = f.bookings.CreateBooking(ctx, second, ride.ID, 1)
	require.NoError(t, err)

	_, err = f.rides.CancelRide(ctx, primitive.NewObjectID(), ride.ID)
	require.ErrorIs(t, err, ErrForbidden)

	summary, err := f.rides.CancelRide(ctx, driverID, ride.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Cancelled, 2)
	assert.Empty(t, summary.Failed)

	f.requireBalance(t, first, 60000, 0)
	f.requireBalance(t, second, 30000, 0)
	cancelled := f.requireSeats(t, ride.ID, 3)
	assert.Equal(t, models.RideStatusCancelled, cancelled.Status)

	_, err = f.rides.StartRide(ctx, driverID, ride.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}
