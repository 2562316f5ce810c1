package handlers

import (
	"context"

	"goride-ledger/internal/models"
	"goride-ledger/internal/services"
	"goride-ledger/internal/utils"
	"goride-ledger/internal/validators"
	"goride-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	base
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService, log *logger.Logger) *RideHandler {
	return &RideHandler{
		base:        base{logger: log},
		rideService: rideService,
	}
}

// CreateRide publishes a ride for the calling driver
func (h *RideHandler) CreateRide(c *gin.Context) {
	driverID, ok := currentUser(c)
	if !ok {
		return
	}

	var request services.CreateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if respondValidation(c, validators.ValidateRideCreate(&request)) {
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), driverID, &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride published successfully", ride)
}

func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := pathID(c, "id", "ride")
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved successfully", ride)
}

// GetDriverRides lists rides published by the caller
func (h *RideHandler) GetDriverRides(c *gin.Context) {
	driverID, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	rides, total, err := h.rideService.GetDriverRides(c.Request.Context(), driverID, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	listResponse(c, "Rides retrieved successfully", rides, params, total)
}

func (h *RideHandler) GetRideBookings(c *gin.Context) {
	driverID, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id", "ride")
	if !ok {
		return
	}

	bookings, err := h.rideService.GetRideBookings(c.Request.Context(), driverID, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bookings retrieved successfully", bookings)
}

func (h *RideHandler) StartRide(c *gin.Context) {
	driverID, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id", "ride")
	if !ok {
		return
	}

	ride, err := h.rideService.StartRide(c.Request.Context(), driverID, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride started successfully", ride)
}

// EndRide completes the ride and settles its approved bookings
func (h *RideHandler) EndRide(c *gin.Context) {
	h.close(c, "Ride completed successfully", h.rideService.EndRide)
}

// CancelRide cancels the ride and refunds every open booking in full
func (h *RideHandler) CancelRide(c *gin.Context) {
	h.close(c, "Ride cancelled successfully", h.rideService.CancelRide)
}

func (h *RideHandler) close(c *gin.Context, message string, apply func(ctx context.Context, driverID, rideID primitive.ObjectID) (*models.RideCloseSummary, error)) {
	driverID, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id", "ride")
	if !ok {
		return
	}

	summary, err := apply(c.Request.Context(), driverID, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if len(summary.Failed) > 0 {
		message += "; some bookings will be retried"
	}
	utils.SuccessResponse(c, message, summary)
}
