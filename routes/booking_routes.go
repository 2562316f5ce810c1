package routes

import (
	handlers "goride-ledger/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes sets up booking routes. Approve and reject are limited to
// the ride's driver by the booking service.
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("", bookingHandler.GetPassengerBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PATCH("/:id/approve", bookingHandler.ApproveBooking)
		bookings.PATCH("/:id/reject", bookingHandler.RejectBooking)
		bookings.PATCH("/:id/cancel", bookingHandler.CancelBooking)
	}
}
