package handlers

import (
	"goride-ledger/internal/services"
	"goride-ledger/internal/utils"
	"goride-ledger/internal/validators"
	"goride-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	base
	ratingService services.RatingService
}

func NewRatingHandler(ratingService services.RatingService, log *logger.Logger) *RatingHandler {
	return &RatingHandler{
		base:          base{logger: log},
		ratingService: ratingService,
	}
}

// SubmitRating rates the other participant of a completed booking
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	reviewerID, ok := currentUser(c)
	if !ok {
		return
	}

	var request services.SubmitRatingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if respondValidation(c, validators.ValidateRatingSubmit(&request)) {
		return
	}

	rating, err := h.ratingService.SubmitRating(c.Request.Context(), reviewerID, &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Rating submitted successfully", rating)
}

func (h *RatingHandler) GetUserRatingAggregate(c *gin.Context) {
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	aggregate, err := h.ratingService.GetUserRatingAggregate(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Rating summary retrieved successfully", aggregate)
}

func (h *RatingHandler) GetUserRatings(c *gin.Context) {
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	ratings, total, err := h.ratingService.GetUserRatings(c.Request.Context(), userID, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	listResponse(c, "Ratings retrieved successfully", ratings, params, total)
}

func (h *RatingHandler) GetDriverPerformance(c *gin.Context) {
	driverID, ok := pathID(c, "id", "driver")
	if !ok {
		return
	}

	performance, err := h.ratingService.GetDriverPerformance(c.Request.Context(), driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver performance retrieved successfully", performance)
}
