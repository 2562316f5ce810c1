//go:build integration

package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Needs a replica set, e.g. MONGODB_URI=mongodb://localhost:27017/?replicaSet=rs0
func newReplicaSet(t *testing.T) *MongoDB {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	db, err := NewMongoDB(&DatabaseConfig{
		URI:                uri,
		Database:           "goride_ledger_it_" + primitive.NewObjectID().Hex(),
		MaxPoolSize:        10,
		ConnectTimeout:     10 * time.Second,
		SocketTimeout:      10 * time.Second,
		TransactionTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Close()
	})
	require.NoError(t, db.Database.CreateCollection(context.Background(), "wallets"))
	return db
}

func TestWithTransaction(t *testing.T) {
	db := newReplicaSet(t)
	wallets := db.Collection("wallets")
	ctx := context.Background()

	t.Run("commits every write", func(t *testing.T) {
		userID := primitive.NewObjectID()
		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			assert.True(t, db.InTransaction(ctx))
			if _, err := wallets.InsertOne(ctx, bson.M{"user_id": userID, "available_balance": int64(100)}); err != nil {
				return err
			}
			_, err := wallets.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$inc": bson.M{"available_balance": int64(-40)}})
			return err
		})
		require.NoError(t, err)

		var wallet bson.M
		require.NoError(t, wallets.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wallet))
		assert.Equal(t, int64(60), wallet["available_balance"])
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		userID := primitive.NewObjectID()
		boom := errors.New("boom")
		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			if _, err := wallets.InsertOne(ctx, bson.M{"user_id": userID}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		count, err := wallets.CountDocuments(ctx, bson.M{"user_id": userID})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		userID := primitive.NewObjectID()
		boom := errors.New("boom")
		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			inner := db.WithTransaction(ctx, func(ctx context.Context) error {
				_, err := wallets.InsertOne(ctx, bson.M{"user_id": userID})
				return err
			})
			require.NoError(t, inner)
			return boom
		})
		require.ErrorIs(t, err, boom)

		count, err := wallets.CountDocuments(ctx, bson.M{"user_id": userID})
		require.NoError(t, err)
		assert.Zero(t, count, "inner write must roll back with the outer transaction")
	})

	assert.False(t, db.InTransaction(ctx))
}
