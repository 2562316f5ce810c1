package memory

import (
	"context"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type settlementRepository struct {
	store *Store
}

func NewSettlementRepository(store *Store) interfaces.SettlementRepository {
	return &settlementRepository{store: store}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.settlements[settlement.BookingID]; exists {
		return interfaces.ErrDuplicate
	}
	if settlement.ID.IsZero() {
		settlement.ID = primitive.NewObjectID()
	}
	settlement.CreatedAt = time.Now()
	r.store.settlements[settlement.BookingID] = clone(settlement)
	return nil
}

func (r *settlementRepository) GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Settlement, error) {
	defer r.store.lock(ctx)()

	settlement, ok := r.store.settlements[bookingID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return clone(settlement), nil
}

func (r *settlementRepository) SummarizeByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.EarningsSummary, error) {
	defer r.store.lock(ctx)()

	summary := &models.EarningsSummary{}
	for _, settlement := range r.store.settlements {
		if settlement.DriverID != driverID {
			continue
		}
		summary.Settlements++
		summary.Gross += settlement.GrossAmount
		summary.PlatformFee += settlement.PlatformFee
		summary.Net += settlement.DriverNet
	}
	return summary, nil
}
