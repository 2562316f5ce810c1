package routes

import (
	handlers "goride-ledger/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

func SetupRatingRoutes(r *gin.RouterGroup, ratingHandler *handlers.RatingHandler) {
	r.POST("/ratings", ratingHandler.SubmitRating)

	users := r.Group("/users")
	{
		users.GET("/:id/ratings", ratingHandler.GetUserRatingAggregate)
		users.GET("/:id/reviews", ratingHandler.GetUserRatings)
	}

	r.GET("/drivers/:id/performance", ratingHandler.GetDriverPerformance)
}
