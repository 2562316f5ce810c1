package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookingTransitions(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		BookingStatusPending:  {BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled},
		BookingStatusApproved: {BookingStatusCompleted, BookingStatusRejected, BookingStatusCancelled},
	}
	all := []BookingStatus{
		BookingStatusPending, BookingStatusApproved, BookingStatusRejected,
		BookingStatusCancelled, BookingStatusCompleted,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	for _, terminal := range []BookingStatus{BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted} {
		assert.True(t, terminal.IsTerminal())
	}
	assert.False(t, BookingStatusApproved.IsTerminal())

	assert.Equal(t, []BookingStatus{BookingStatusPending}, SourceStatuses(BookingStatusApproved))
	assert.Equal(t, []BookingStatus{BookingStatusApproved}, SourceStatuses(BookingStatusCompleted))
	assert.Equal(t, []BookingStatus{BookingStatusPending, BookingStatusApproved}, SourceStatuses(BookingStatusCancelled))
	assert.Empty(t, SourceStatuses(BookingStatusPending))
}

func TestBookingCounterpart(t *testing.T) {
	booking := &Booking{PassengerID: primitive.NewObjectID(), DriverID: primitive.NewObjectID()}

	other, ok := booking.Counterpart(booking.PassengerID)
	assert.True(t, ok)
	assert.Equal(t, booking.DriverID, other)

	other, ok = booking.Counterpart(booking.DriverID)
	assert.True(t, ok)
	assert.Equal(t, booking.PassengerID, other)

	_, ok = booking.Counterpart(primitive.NewObjectID())
	assert.False(t, ok)
}

func TestTransactionDeltasReplayToWallet(t *testing.T) {
	owner := primitive.NewObjectID()
	log := []*Transaction{
		NewTransaction(owner, TransactionTypeTopUp, 100000, nil),
		NewTransaction(owner, TransactionTypeHold, 60000, nil),
		NewTransaction(owner, TransactionTypeRefund, 48000, nil),
		NewTransaction(owner, TransactionTypePayment, 12000, nil),
		NewTransaction(owner, TransactionTypeHold, 30000, nil),
		NewTransaction(owner, TransactionTypeRelease, 30000, nil),
		NewTransaction(owner, TransactionTypeWithdrawal, 8000, nil),
		NewTransaction(owner, TransactionTypeEarning, 5400, nil),
	}

	var sums LedgerSums
	for _, tx := range log {
		sums.Available += tx.AvailableDelta
		sums.Held += tx.HeldDelta
	}

	assert.Equal(t, int64(85400), sums.Available)
	assert.Zero(t, sums.Held)
	// holds, releases and refunds only move funds inside the wallet
	assert.Equal(t, int64(100000-8000+5400-12000), sums.Available+sums.Held)
}

func TestRatingAverages(t *testing.T) {
	aggregate := &RatingAggregate{
		Count: 3,
		Sum:   14,
		Categories: map[string]*CategoryAggregate{
			"safety":  {Count: 2, Sum: 9},
			"comfort": {Count: 0, Sum: 0},
		},
	}
	aggregate.ComputeAverages()

	assert.Equal(t, 4.67, aggregate.Average)
	assert.Equal(t, 4.5, aggregate.Categories["safety"].Average)
	assert.Zero(t, aggregate.Categories["comfort"].Average)
}
