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

type walletRepository struct {
	store *Store
}

func NewWalletRepository(store *Store) interfaces.WalletRepository {
	return &walletRepository{store: store}
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	defer r.store.lock(ctx)()

	wallet, ok := r.store.wallets[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return clone(wallet), nil
}

func (r *walletRepository) Ensure(ctx context.Context, userID primitive.ObjectID, currency string) (*models.Wallet, error) {
	defer r.store.lock(ctx)()

	if wallet, ok := r.store.wallets[userID]; ok {
		return clone(wallet), nil
	}

	now := time.Now()
	wallet := &models.Wallet{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store.wallets[userID] = wallet
	return clone(wallet), nil
}

func (r *walletRepository) ApplyDelta(ctx context.Context, userID primitive.ObjectID, availableDelta, heldDelta int64) (*models.Wallet, error) {
	defer r.store.lock(ctx)()

	current, ok := r.store.wallets[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if current.AvailableBalance+availableDelta < 0 || current.HeldAmount+heldDelta < 0 {
		return nil, interfaces.ErrConditionFailed
	}

	wallet := clone(current)
	wallet.AvailableBalance += availableDelta
	wallet.HeldAmount += heldDelta
	wallet.Version++
	wallet.UpdatedAt = time.Now()
	r.store.wallets[userID] = wallet

	return clone(wallet), nil
}

func (r *walletRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Wallet, int64, error) {
	defer r.store.lock(ctx)()

	all := make([]*models.Wallet, 0, len(r.store.wallets))
	for _, wallet := range r.store.wallets {
		all = append(all, clone(wallet))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.Hex() < all[j].ID.Hex()
	})

	start, end := params.Window(len(all))
	return all[start:end], int64(len(all)), nil
}
