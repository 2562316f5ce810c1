package memory

import (
	"context"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ratingRepository struct {
	store *Store
}

func NewRatingRepository(store *Store) interfaces.RatingRepository {
	return &ratingRepository{store: store}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.ratings {
		if existing.BookingID == rating.BookingID && existing.ReviewerID == rating.ReviewerID {
			return interfaces.ErrDuplicate
		}
	}
	if rating.ID.IsZero() {
		rating.ID = primitive.NewObjectID()
	}
	rating.CreatedAt = time.Now()
	r.store.ratings = append(r.store.ratings, cloneRating(rating))
	return nil
}

func (r *ratingRepository) GetByRatedID(ctx context.Context, ratedID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	defer r.store.lock(ctx)()

	var ratings []*models.Rating
	for _, rating := range r.store.ratings {
		if rating.RatedUserID == ratedID {
			ratings = append(ratings, cloneRating(rating))
		}
	}
	total := int64(len(ratings))
	return page(ratings, params, func(r *models.Rating) time.Time { return r.CreatedAt }), total, nil
}

func (r *ratingRepository) GetAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error) {
	defer r.store.lock(ctx)()

	aggregate, ok := r.store.aggregates[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return cloneAggregate(aggregate), nil
}

func (r *ratingRepository) AddToAggregate(ctx context.Context, userID primitive.ObjectID, rating int, categories map[string]int) (*models.RatingAggregate, error) {
	defer r.store.lock(ctx)()

	var aggregate *models.RatingAggregate
	if current, ok := r.store.aggregates[userID]; ok {
		aggregate = cloneAggregate(current)
	} else {
		aggregate = &models.RatingAggregate{
			UserID:     userID,
			Categories: make(map[string]*models.CategoryAggregate),
		}
	}

	aggregate.Count++
	aggregate.Sum += int64(rating)
	for name, value := range categories {
		category, ok := aggregate.Categories[name]
		if !ok {
			category = &models.CategoryAggregate{}
			aggregate.Categories[name] = category
		}
		category.Count++
		category.Sum += int64(value)
	}
	aggregate.UpdatedAt = time.Now()
	r.store.aggregates[userID] = aggregate

	return cloneAggregate(aggregate), nil
}

func cloneRating(rating *models.Rating) *models.Rating {
	c := clone(rating)
	if rating.Categories != nil {
		c.Categories = copyMap(rating.Categories)
	}
	return c
}

func cloneAggregate(aggregate *models.RatingAggregate) *models.RatingAggregate {
	c := clone(aggregate)
	c.Categories = make(map[string]*models.CategoryAggregate, len(aggregate.Categories))
	for name, category := range aggregate.Categories {
		c.Categories[name] = clone(category)
	}
	return c
}
