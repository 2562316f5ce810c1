package memory

import (
	"context"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type transactionRepository struct {
	store *Store
}

func NewTransactionRepository(store *Store) interfaces.TransactionRepository {
	return &transactionRepository{store: store}
}

func (r *transactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	defer r.store.lock(ctx)()

	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	r.store.transactions = append(r.store.transactions, clone(tx))
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	defer r.store.lock(ctx)()

	for _, tx := range r.store.transactions {
		if tx.ID == id {
			return clone(tx), nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *transactionRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	defer r.store.lock(ctx)()

	var owned []*models.Transaction
	for _, tx := range r.store.transactions {
		if tx.WalletOwnerID == ownerID {
			owned = append(owned, clone(tx))
		}
	}

	// the log is already in insertion order
	if params.Order == "desc" {
		for i, j := 0, len(owned)-1; i < j; i, j = i+1, j-1 {
			owned[i], owned[j] = owned[j], owned[i]
		}
	}

	start, end := params.Window(len(owned))
	return owned[start:end], int64(len(owned)), nil
}

func (r *transactionRepository) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Transaction, error) {
	defer r.store.lock(ctx)()

	var txs []*models.Transaction
	for _, tx := range r.store.transactions {
		if tx.BookingID != nil && *tx.BookingID == bookingID {
			txs = append(txs, clone(tx))
		}
	}
	return txs, nil
}

func (r *transactionRepository) SumByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.LedgerSums, error) {
	defer r.store.lock(ctx)()

	sums := &models.LedgerSums{}
	for _, tx := range r.store.transactions {
		if tx.WalletOwnerID != ownerID {
			continue
		}
		sums.Available += tx.AvailableDelta
		sums.Held += tx.HeldDelta
		sums.Count++
	}
	return sums, nil
}
