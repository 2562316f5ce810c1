// Package memory keeps every collection in process memory behind one lock. It
// honours the same contract as the MongoDB repositories: conditional updates
// are atomic and WithTransaction is all-or-nothing. It backs the test suites
// and single-replica development runs (APP_STORE=memory).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

type Store struct {
	mu sync.Mutex

	wallets      map[primitive.ObjectID]*models.Wallet
	transactions []*models.Transaction
	holds        map[primitive.ObjectID]*models.Hold
	rides        map[primitive.ObjectID]*models.Ride
	bookings     map[primitive.ObjectID]*models.Booking
	settlements  map[primitive.ObjectID]*models.Settlement
	ratings      []*models.Rating
	aggregates   map[primitive.ObjectID]*models.RatingAggregate
}

func NewStore() *Store {
	return &Store{
		wallets:     make(map[primitive.ObjectID]*models.Wallet),
		holds:       make(map[primitive.ObjectID]*models.Hold),
		rides:       make(map[primitive.ObjectID]*models.Ride),
		bookings:    make(map[primitive.ObjectID]*models.Booking),
		settlements: make(map[primitive.ObjectID]*models.Settlement),
		aggregates:  make(map[primitive.ObjectID]*models.RatingAggregate),
	}
}

// snapshot relies on records never being mutated in place: every write stores
// a fresh copy, so copying the maps is enough to roll back.
type snapshot struct {
	wallets      map[primitive.ObjectID]*models.Wallet
	transactions int
	holds        map[primitive.ObjectID]*models.Hold
	rides        map[primitive.ObjectID]*models.Ride
	bookings     map[primitive.ObjectID]*models.Booking
	settlements  map[primitive.ObjectID]*models.Settlement
	ratings      int
	aggregates   map[primitive.ObjectID]*models.RatingAggregate
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.InTransaction(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	// A deadline that passed while fn ran fails the whole unit of work.
	if err := ctx.Err(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) InTransaction(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock takes the store lock unless ctx already runs inside one of this
// store's transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.InTransaction(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) snapshot() *snapshot {
	return &snapshot{
		wallets:      copyMap(s.wallets),
		transactions: len(s.transactions),
		holds:        copyMap(s.holds),
		rides:        copyMap(s.rides),
		bookings:     copyMap(s.bookings),
		settlements:  copyMap(s.settlements),
		ratings:      len(s.ratings),
		aggregates:   copyMap(s.aggregates),
	}
}

func (s *Store) restore(snap *snapshot) {
	s.wallets = snap.wallets
	s.transactions = s.transactions[:snap.transactions]
	s.holds = snap.holds
	s.rides = snap.rides
	s.bookings = snap.bookings
	s.settlements = snap.settlements
	s.ratings = s.ratings[:snap.ratings]
	s.aggregates = snap.aggregates
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

// page orders items by creation time, breaking ties on insertion order, and
// cuts out the requested page. Other sort fields are ignored in memory.
func page[T any](items []*T, params *utils.PaginationParams, createdAt func(*T) time.Time) []*T {
	sort.SliceStable(items, func(i, j int) bool {
		if params.Order == "asc" {
			return createdAt(items[i]).Before(createdAt(items[j]))
		}
		return createdAt(items[i]).After(createdAt(items[j]))
	})
	start, end := params.Window(len(items))
	return items[start:end]
}
