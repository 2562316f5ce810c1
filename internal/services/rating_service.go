package services

import (
	"context"
	"errors"
	"fmt"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmitRatingRequest struct {
	BookingID   primitive.ObjectID `json:"booking_id" validate:"required"`
	RatedUserID primitive.ObjectID `json:"rated_user_id"`
	Rating      int                `json:"rating" validate:"required,rating_value"`
	Categories  map[string]int     `json:"categories,omitempty" validate:"omitempty,max=10,dive,keys,category_name,endkeys,rating_value"`
	Comment     string             `json:"comment,omitempty" validate:"omitempty,max=500"`
}

type RatingService interface {
	SubmitRating(ctx context.Context, reviewerID primitive.ObjectID, req *SubmitRatingRequest) (*models.Rating, error)
	GetUserRatingAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error)
	GetUserRatings(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error)
	GetDriverPerformance(ctx context.Context, driverID primitive.ObjectID) (*models.DriverPerformance, error)
}

type ratingService struct {
	repos  *interfaces.Repositories
	cache  CacheService
	logger *logger.Logger
}

func NewRatingService(repos *interfaces.Repositories, cache CacheService, log *logger.Logger) RatingService {
	return &ratingService{
		repos:  repos,
		cache:  cache,
		logger: log,
	}
}

func (s *ratingService) SubmitRating(ctx context.Context, reviewerID primitive.ObjectID, req *SubmitRatingRequest) (*models.Rating, error) {
	if err := validateRating(req.Rating, req.Categories); err != nil {
		return nil, err
	}

	var rating *models.Rating
	var aggregate *models.RatingAggregate
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		booking, err := s.repos.Bookings.GetByID(ctx, req.BookingID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if booking.Status != models.BookingStatusCompleted {
			return ErrBookingNotCompleted
		}

		ratedUserID, ok := booking.Counterpart(reviewerID)
		if !ok {
			return ErrNotParticipant
		}
		if !req.RatedUserID.IsZero() && req.RatedUserID != ratedUserID {
			return ErrNotParticipant
		}

		rating = &models.Rating{
			BookingID:   booking.ID,
			ReviewerID:  reviewerID,
			RatedUserID: ratedUserID,
			Rating:      req.Rating,
			Categories:  req.Categories,
			Comment:     req.Comment,
		}
		if err := s.repos.Ratings.Create(ctx, rating); err != nil {
			if errors.Is(err, interfaces.ErrDuplicate) {
				return ErrAlreadyRated
			}
			return err
		}

		aggregate, err = s.repos.Ratings.AddToAggregate(ctx, ratedUserID, req.Rating, req.Categories)
		return err
	})
	if err != nil {
		return nil, err
	}

	// the rating count only grows, so it versions the cached aggregate
	aggregate.ComputeAverages()
	s.cache.Set(ctx, cacheKey(utils.CacheRatingAggregatePrefix, rating.RatedUserID), aggregate, aggregate.Count, utils.RatingCacheTTL)
	s.logger.WithBookingID(rating.BookingID).WithFields(map[string]interface{}{
		"reviewer_id":   reviewerID.Hex(),
		"rated_user_id": rating.RatedUserID.Hex(),
		"rating":        rating.Rating,
	}).Info("Rating submitted")
	return rating, nil
}

func (s *ratingService) GetUserRatingAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error) {
	key := cacheKey(utils.CacheRatingAggregatePrefix, userID)

	var aggregate models.RatingAggregate
	if s.cache.Get(ctx, key, &aggregate) {
		aggregate.ComputeAverages()
		return &aggregate, nil
	}

	stored, err := s.repos.Ratings.GetAggregate(ctx, userID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, err
		}
		stored = &models.RatingAggregate{
			UserID:     userID,
			Categories: map[string]*models.CategoryAggregate{},
		}
	}

	stored.ComputeAverages()
	s.cache.Set(ctx, key, stored, stored.Count, utils.RatingCacheTTL)
	return stored, nil
}

func (s *ratingService) GetUserRatings(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	return s.repos.Ratings.GetByRatedID(ctx, userID, params)
}

func (s *ratingService) GetDriverPerformance(ctx context.Context, driverID primitive.ObjectID) (*models.DriverPerformance, error) {
	aggregate, err := s.GetUserRatingAggregate(ctx, driverID)
	if err != nil {
		return nil, err
	}

	completed, err := s.repos.Bookings.CountByDriver(ctx, driverID, models.BookingStatusCompleted, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count completed bookings: %w", err)
	}
	cancelled, err := s.repos.Bookings.CountByDriver(ctx, driverID, models.BookingStatusCancelled, models.CancelledByDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to count cancelled bookings: %w", err)
	}
	earnings, err := s.repos.Settlements.SummarizeByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	performance := &models.DriverPerformance{
		DriverID:          driverID,
		Ratings:           aggregate,
		CompletedBookings: completed,
		CancelledByDriver: cancelled,
		Earnings:          earnings,
	}
	if total := completed + cancelled; total > 0 {
		performance.CancellationRate = float64(cancelled) / float64(total)
	}
	return performance, nil
}

func validateRating(rating int, categories map[string]int) error {
	if rating < utils.MinRating || rating > utils.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidRating, utils.MinRating, utils.MaxRating)
	}
	if len(categories) > utils.MaxRatingCategories {
		return fmt.Errorf("%w: at most %d categories", ErrInvalidRating, utils.MaxRatingCategories)
	}
	for name, value := range categories {
		if !utils.IsRatingCategory(name) {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidRating, name)
		}
		if value < utils.MinRating || value > utils.MaxRating {
			return fmt.Errorf("%w: category %q must be between %d and %d", ErrInvalidRating, name, utils.MinRating, utils.MaxRating)
		}
	}
	return nil
}
