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

type rideRepository struct {
	store *Store
}

func NewRideRepository(store *Store) interfaces.RideRepository {
	return &rideRepository{store: store}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	defer r.store.lock(ctx)()

	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	if _, exists := r.store.rides[ride.ID]; exists {
		return interfaces.ErrDuplicate
	}
	now := time.Now()
	ride.CreatedAt = now
	ride.UpdatedAt = now
	r.store.rides[ride.ID] = clone(ride)
	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	defer r.store.lock(ctx)()

	ride, ok := r.store.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return clone(ride), nil
}

func (r *rideRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	defer r.store.lock(ctx)()

	var rides []*models.Ride
	for _, ride := range r.store.rides {
		if ride.DriverID == driverID {
			rides = append(rides, clone(ride))
		}
	}
	total := int64(len(rides))
	return page(rides, params, func(r *models.Ride) time.Time { return r.CreatedAt }), total, nil
}

func (r *rideRepository) ListByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error) {
	defer r.store.lock(ctx)()

	var rides []*models.Ride
	for _, ride := range r.store.rides {
		if ride.Status == status {
			rides = append(rides, clone(ride))
		}
	}
	sort.Slice(rides, func(i, j int) bool {
		return rides[i].CreatedAt.Before(rides[j].CreatedAt)
	})
	return rides, nil
}

func (r *rideRepository) ReserveSeats(ctx context.Context, id primitive.ObjectID, seats int) (*models.Ride, error) {
	defer r.store.lock(ctx)()

	current, ok := r.store.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if !current.IsBookable() || current.AvailableSeats < seats {
		return nil, interfaces.ErrConditionFailed
	}

	ride := clone(current)
	ride.AvailableSeats -= seats
	if ride.AvailableSeats == 0 {
		ride.Status = models.RideStatusFull
	}
	ride.UpdatedAt = time.Now()
	r.store.rides[id] = ride
	return clone(ride), nil
}

func (r *rideRepository) RestoreSeats(ctx context.Context, id primitive.ObjectID, seats int) (*models.Ride, error) {
	defer r.store.lock(ctx)()

	current, ok := r.store.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if current.AvailableSeats+seats > current.TotalSeats {
		return nil, interfaces.ErrConditionFailed
	}

	ride := clone(current)
	ride.AvailableSeats += seats
	if ride.Status == models.RideStatusFull && ride.AvailableSeats > 0 {
		ride.Status = models.RideStatusActive
	}
	ride.UpdatedAt = time.Now()
	r.store.rides[id] = ride
	return clone(ride), nil
}

func (r *rideRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.RideStatus, to models.RideStatus, at time.Time) (*models.Ride, error) {
	defer r.store.lock(ctx)()

	current, ok := r.store.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if !containsStatus(from, current.Status) {
		return nil, interfaces.ErrConditionFailed
	}

	ride := clone(current)
	ride.Status = to
	switch to {
	case models.RideStatusInProgress:
		ride.StartedAt = &at
	case models.RideStatusCompleted:
		ride.CompletedAt = &at
	case models.RideStatusCancelled:
		ride.CancelledAt = &at
	}
	ride.UpdatedAt = at
	r.store.rides[id] = ride
	return clone(ride), nil
}

func containsStatus[S comparable](set []S, s S) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
