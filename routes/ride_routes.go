package routes

import (
	handlers "goride-ledger/internal/handlers/shared"
	"goride-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes sets up ride publishing and lifecycle routes
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler) {
	rides := r.Group("/rides")
	{
		rides.GET("/:id", rideHandler.GetRide)

		// Driver-only operations; ownership is checked per ride
		driver := rides.Group("")
		driver.Use(middleware.DriverRequired())
		{
			driver.POST("", rideHandler.CreateRide)
			driver.GET("", rideHandler.GetDriverRides)
			driver.GET("/:id/bookings", rideHandler.GetRideBookings)
			driver.PATCH("/:id/start", rideHandler.StartRide)
			driver.PATCH("/:id/end", rideHandler.EndRide)
			driver.PATCH("/:id/cancel", rideHandler.CancelRide)
		}
	}
}
