package memory

import (
	"context"
	"sort"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) interfaces.BookingRepository {
	return &bookingRepository{store: store}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	defer r.store.lock(ctx)()

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	if _, exists := r.store.bookings[booking.ID]; exists {
		return interfaces.ErrDuplicate
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.store.bookings[booking.ID] = clone(booking)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	defer r.store.lock(ctx)()

	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return clone(booking), nil
}

func (r *bookingRepository) ListByRide(ctx context.Context, rideID primitive.ObjectID, statuses ...models.BookingStatus) ([]*models.Booking, error) {
	defer r.store.lock(ctx)()

	var bookings []*models.Booking
	for _, booking := range r.store.bookings {
		if booking.RideID != rideID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, booking.Status) {
			continue
		}
		bookings = append(bookings, clone(booking))
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
	})
	return bookings, nil
}

func (r *bookingRepository) ListByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	defer r.store.lock(ctx)()

	var bookings []*models.Booking
	for _, booking := range r.store.bookings {
		if booking.PassengerID == passengerID {
			bookings = append(bookings, clone(booking))
		}
	}
	total := int64(len(bookings))
	return page(bookings, params, func(b *models.Booking) time.Time { return b.CreatedAt }), total, nil
}

func (r *bookingRepository) CountByDriver(ctx context.Context, driverID primitive.ObjectID, status models.BookingStatus, cancelledBy models.CancelledBy) (int64, error) {
	defer r.store.lock(ctx)()

	var count int64
	for _, booking := range r.store.bookings {
		if booking.DriverID != driverID || booking.Status != status {
			continue
		}
		if cancelledBy != "" && booking.CancelledBy != cancelledBy {
			continue
		}
		count++
	}
	return count, nil
}

func (r *bookingRepository) Transition(ctx context.Context, id primitive.ObjectID, from []models.BookingStatus, to models.BookingStatus, update *models.BookingUpdate) (*models.Booking, error) {
	defer r.store.lock(ctx)()

	current, ok := r.store.bookings[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if !containsStatus(from, current.Status) {
		return nil, interfaces.ErrConditionFailed
	}

	booking := clone(current)
	booking.Status = to
	at := time.Now()
	if update != nil {
		if !update.At.IsZero() {
			at = update.At
		}
		booking.CancelledBy = update.CancelledBy
		booking.CancellationReason = update.CancellationReason
		booking.RefundAmount = update.RefundAmount
		booking.CancellationFee = update.CancellationFee
	}
	switch to {
	case models.BookingStatusApproved:
		booking.ApprovedAt = &at
	case models.BookingStatusCompleted:
		booking.CompletedAt = &at
		booking.ClosedAt = &at
	case models.BookingStatusRejected, models.BookingStatusCancelled:
		booking.ClosedAt = &at
	}
	booking.UpdatedAt = at
	r.store.bookings[id] = booking
	return clone(booking), nil
}

func (r *bookingRepository) MarkSeatsReleased(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	defer r.store.lock(ctx)()

	current, ok := r.store.bookings[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if current.SeatsReleased {
		return nil, interfaces.ErrConditionFailed
	}

	booking := clone(current)
	booking.SeatsReleased = true
	booking.UpdatedAt = time.Now()
	r.store.bookings[id] = booking
	return clone(booking), nil
}
