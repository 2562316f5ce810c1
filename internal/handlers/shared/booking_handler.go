package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"goride-ledger/internal/models"
	"goride-ledger/internal/services"
	"goride-ledger/internal/utils"
	"goride-ledger/internal/validators"
	"goride-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	base
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		base:           base{logger: log},
		bookingService: bookingService,
	}
}

// CreateBooking reserves seats on a ride and holds the fare
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	passengerID, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.BookingCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if respondValidation(c, validators.ValidateBookingCreate(&request)) {
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), passengerID, request.RideID, request.Seats)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", booking)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

// GetPassengerBookings lists the caller's bookings
func (h *BookingHandler) GetPassengerBookings(c *gin.Context) {
	passengerID, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetPassengerBookings(c.Request.Context(), passengerID, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	listResponse(c, "Bookings retrieved successfully", bookings, params, total)
}

func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	driverID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingService.ApproveBooking(c.Request.Context(), driverID, bookingID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking approved successfully", booking)
}

func (h *BookingHandler) RejectBooking(c *gin.Context) {
	h.closeWithReason(c, "Booking rejected successfully", h.bookingService.RejectBooking)
}

// CancelBooking cancels on behalf of the passenger or the driver
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.closeWithReason(c, "Booking cancelled successfully", h.bookingService.CancelBooking)
}

func (h *BookingHandler) closeWithReason(c *gin.Context, message string, apply func(ctx context.Context, actorID, bookingID primitive.ObjectID, reason string) (*models.Booking, error)) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	// the body is optional and may arrive chunked
	var request validators.BookingReasonRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
			utils.BadRequestResponse(c, "Invalid request: "+err.Error())
			return
		}
		if respondValidation(c, validators.ValidateBookingReason(&request)) {
			return
		}
	}

	booking, err := apply(c.Request.Context(), actorID, bookingID, request.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, message, booking)
}
