package memory

import (
	"context"
	"sort"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type holdRepository struct {
	store *Store
}

func NewHoldRepository(store *Store) interfaces.HoldRepository {
	return &holdRepository{store: store}
}

func (r *holdRepository) Create(ctx context.Context, hold *models.Hold) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.holds[hold.BookingID]; exists {
		return interfaces.ErrDuplicate
	}
	if hold.ID.IsZero() {
		hold.ID = primitive.NewObjectID()
	}
	now := time.Now()
	hold.CreatedAt = now
	hold.UpdatedAt = now
	r.store.holds[hold.BookingID] = clone(hold)
	return nil
}

func (r *holdRepository) GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Hold, error) {
	defer r.store.lock(ctx)()

	hold, ok := r.store.holds[bookingID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return clone(hold), nil
}

func (r *holdRepository) Transition(ctx context.Context, bookingID primitive.ObjectID, from, to models.HoldStatus) (*models.Hold, error) {
	defer r.store.lock(ctx)()

	current, ok := r.store.holds[bookingID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if current.Status != from {
		return nil, interfaces.ErrConditionFailed
	}

	hold := clone(current)
	hold.Status = to
	hold.UpdatedAt = time.Now()
	r.store.holds[bookingID] = hold
	return clone(hold), nil
}

func (r *holdRepository) ListByStatus(ctx context.Context, status models.HoldStatus) ([]*models.Hold, error) {
	defer r.store.lock(ctx)()

	var holds []*models.Hold
	for _, hold := range r.store.holds {
		if hold.Status == status {
			holds = append(holds, clone(hold))
		}
	}
	sort.Slice(holds, func(i, j int) bool {
		return holds[i].CreatedAt.Before(holds[j].CreatedAt)
	})
	return holds, nil
}
