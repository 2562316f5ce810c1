package services

import (
	"context"
	"testing"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// completedBookings runs a ride to completion with one booking per passenger.
func completedBookings(t *testing.T, f *fixture, driverID primitive.ObjectID, passengers ...primitive.ObjectID) []*models.Booking {
	t.Helper()
	ctx := context.Background()
	ride := f.publishRide(t, driverID, len(passengers), 20000)

	bookings := make([]*models.Booking, 0, len(passengers))
	for _, passengerID := range passengers {
		booking, err := f.bookings.CreateBooking(ctx, passengerID, ride.ID, 1)
		require.NoError(t, err)
		_, err = f.bookings.ApproveBooking(ctx, driverID, booking.ID)
		require.NoError(t, err)
		bookings = append(bookings, booking)
	}

	_, err := f.rides.StartRide(ctx, driverID, ride.ID)
	require.NoError(t, err)
	summary, err := f.rides.EndRide(ctx, driverID, ride.ID)
	require.NoError(t, err)
	require.Len(t, summary.Completed, len(passengers))
	return bookings
}

func TestSubmitRatingPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	passengerID := f.fundedUser(t, 20000)
	ride := f.publishRide(t, driverID, 1, 20000)

	pending, err := f.bookings.CreateBooking(ctx, passengerID, ride.ID, 1)
	require.NoError(t, err)

	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{BookingID: pending.ID, Rating: 5})
	require.ErrorIs(t, err, ErrBookingNotCompleted)

	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{BookingID: pending.ID, Rating: 6})
	require.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{BookingID: pending.ID, Rating: 0})
	require.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{
		BookingID:  pending.ID,
		Rating:     4,
		Categories: map[string]int{"vibes": 5},
	})
	require.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{
		BookingID:  pending.ID,
		Rating:     4,
		Categories: map[string]int{"safety": 9},
	})
	require.ErrorIs(t, err, ErrInvalidRating)

	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{BookingID: primitive.NewObjectID(), Rating: 5})
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSubmitRatingOncePerReviewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	passengerID := f.fundedUser(t, 20000)
	booking := completedBookings(t, f, driverID, passengerID)[0]

	_, err := f.ratings.SubmitRating(ctx, primitive.NewObjectID(), &SubmitRatingRequest{BookingID: booking.ID, Rating: 5})
	require.ErrorIs(t, err, ErrNotParticipant)
	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{
		BookingID:   booking.ID,
		RatedUserID: primitive.NewObjectID(),
		Rating:      5,
	})
	require.ErrorIs(t, err, ErrNotParticipant)

	rating, err := f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{
		BookingID:  booking.ID,
		Rating:     5,
		Categories: map[string]int{"safety": 5, "punctuality": 4},
		Comment:    "smooth ride",
	})
	require.NoError(t, err)
	assert.Equal(t, driverID, rating.RatedUserID)

	_, err = f.ratings.SubmitRating(ctx, passengerID, &SubmitRatingRequest{BookingID: booking.ID, Rating: 1})
	require.ErrorIs(t, err, ErrAlreadyRated)

	// the driver rates the passenger independently
	_, err = f.ratings.SubmitRating(ctx, driverID, &SubmitRatingRequest{BookingID: booking.ID, Rating: 4})
	require.NoError(t, err)

	aggregate, err := f.ratings.GetUserRatingAggregate(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), aggregate.Count)
	assert.Equal(t, 5.0, aggregate.Average)
}

func TestRatingAggregateAndDriverPerformance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	p1 := f.fundedUser(t, 20000)
	p2 := f.fundedUser(t, 20000)
	p3 := f.fundedUser(t, 20000)
	bookings := completedBookings(t, f, driverID, p1, p2, p3)

	submissions := []struct {
		reviewer   primitive.ObjectID
		rating     int
		categories map[string]int
	}{
		{p1, 5, map[string]int{"safety": 5, "comfort": 4}},
		{p2, 4, map[string]int{"safety": 4}},
		{p3, 4, nil},
	}
	for i, s := range submissions {
		_, err := f.ratings.SubmitRating(ctx, s.reviewer, &SubmitRatingRequest{
			BookingID:  bookings[i].ID,
			Rating:     s.rating,
			Categories: s.categories,
		})
		require.NoError(t, err)
	}

	aggregate, err := f.ratings.GetUserRatingAggregate(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), aggregate.Count)
	assert.Equal(t, int64(13), aggregate.Sum)
	assert.Equal(t, 4.33, aggregate.Average)
	require.Contains(t, aggregate.Categories, "safety")
	assert.Equal(t, 4.5, aggregate.Categories["safety"].Average)
	assert.Equal(t, int64(1), aggregate.Categories["comfort"].Count)

	ratings, total, err := f.ratings.GetUserRatings(ctx, driverID, utils.DefaultPagination())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, ratings, 3)

	performance, err := f.ratings.GetDriverPerformance(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), performance.CompletedBookings)
	assert.Zero(t, performance.CancelledByDriver)
	assert.Zero(t, performance.CancellationRate)
	assert.Equal(t, int64(3), performance.Earnings.Settlements)
	assert.Equal(t, int64(60000), performance.Earnings.Gross)
	assert.Equal(t, int64(54000), performance.Earnings.Net)
	assert.Equal(t, 4.33, performance.Ratings.Average)
}

func TestDriverPerformanceCountsDriverCancellations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	p1 := f.fundedUser(t, 40000)
	completedBookings(t, f, driverID, p1)

	ride := f.publishRide(t, driverID, 1, 20000)
	booking, err := f.bookings.CreateBooking(ctx, p1, ride.ID, 1)
	require.NoError(t, err)
	_, err = f.bookings.CancelBooking(ctx, driverID, booking.ID, "")
	require.NoError(t, err)

	performance, err := f.ratings.GetDriverPerformance(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), performance.CompletedBookings)
	assert.Equal(t, int64(1), performance.CancelledByDriver)
	assert.Equal(t, 0.5, performance.CancellationRate)
	assert.Zero(t, performance.Ratings.Count)
}
