package mongodb

import (
	"context"
	"errors"
	"fmt"

	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// findOne decodes a single document, translating a miss into ErrNotFound.
func findOne[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, what string) (*T, error) {
	var doc T
	if err := collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, opts *options.FindOptions, what string) ([]*T, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	defer cursor.Close(ctx)

	var docs []*T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", what, err)
		}
		docs = append(docs, &doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", what, err)
	}
	return docs, nil
}

func findPage[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, params *utils.PaginationParams, what string) ([]*T, int64, error) {
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", what, err)
	}

	docs, err := findAll[T](ctx, collection, filter, params.GetSortOptions(), what)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// conditionalUpdate applies update to the document matched by id plus guard.
// When nothing matches it tells a missing document (ErrNotFound) apart from a
// guard that did not hold (ErrConditionFailed).
func conditionalUpdate[T any](ctx context.Context, collection *mongo.Collection, id bson.M, guard bson.M, update interface{}, what string) (*T, error) {
	filter := bson.M{}
	for k, v := range id {
		filter[k] = v
	}
	for k, v := range guard {
		filter[k] = v
	}

	var doc T
	err := collection.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&doc)
	if err == nil {
		return &doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update %s: %w", what, err)
	}

	count, err := collection.CountDocuments(ctx, id, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", what, err)
	}
	if count == 0 {
		return nil, interfaces.ErrNotFound
	}
	return nil, interfaces.ErrConditionFailed
}

func insertUnique(ctx context.Context, collection *mongo.Collection, doc interface{}, what string) (primitive.ObjectID, error) {
	result, err := collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, interfaces.ErrDuplicate
		}
		return primitive.NilObjectID, fmt.Errorf("failed to create %s: %w", what, err)
	}
	id, _ := result.InsertedID.(primitive.ObjectID)
	return id, nil
}
