package services

import (
	"context"

	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"
	"goride-ledger/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Broadcaster delivers a websocket message to the room it names.
type Broadcaster interface {
	Broadcast(ctx context.Context, message websocket.Message) error
}

// NotificationService pushes booking and ride events to participants. It is
// called after commit and never fails the operation that triggered it.
type NotificationService interface {
	NotifyBooking(ctx context.Context, event string, booking *models.Booking)
	NotifyRide(ctx context.Context, event string, ride *models.Ride, summary *models.RideCloseSummary)
}

type notificationService struct {
	broadcaster Broadcaster
	currency    string
	logger      *logger.Logger
}

// NewNotificationService returns a notifier that only logs when broadcaster
// is nil.
func NewNotificationService(broadcaster Broadcaster, currency string, log *logger.Logger) NotificationService {
	return &notificationService{
		broadcaster: broadcaster,
		currency:    currency,
		logger:      log,
	}
}

func (s *notificationService) NotifyBooking(ctx context.Context, event string, booking *models.Booking) {
	s.logger.LogBookingEvent(booking.ID, event, map[string]interface{}{
		"ride_id":      booking.RideID.Hex(),
		"passenger_id": booking.PassengerID.Hex(),
		"status":       string(booking.Status),
		"seats":        booking.Seats,
		"total_price":  booking.TotalPrice,
	})

	data := map[string]interface{}{
		"booking_id":  booking.ID.Hex(),
		"ride_id":     booking.RideID.Hex(),
		"status":      string(booking.Status),
		"seats":       booking.Seats,
		"total_price": booking.TotalPrice,
		"total_label": utils.FormatAmount(booking.TotalPrice, s.currency),
	}
	if booking.CancelledBy != "" {
		data["cancelled_by"] = string(booking.CancelledBy)
		data["refund_amount"] = booking.RefundAmount
		data["refund_label"] = utils.FormatAmount(booking.RefundAmount, s.currency)
	}

	s.send(ctx, event, data, booking.PassengerID, booking.DriverID)
}

func (s *notificationService) NotifyRide(ctx context.Context, event string, ride *models.Ride, summary *models.RideCloseSummary) {
	s.logger.LogRideEvent(ride.ID, event, map[string]interface{}{
		"driver_id": ride.DriverID.Hex(),
		"status":    string(ride.Status),
	})

	data := map[string]interface{}{
		"ride_id": ride.ID.Hex(),
		"status":  string(ride.Status),
	}
	if summary != nil {
		data["completed"] = len(summary.Completed)
		data["rejected"] = len(summary.Rejected)
		data["cancelled"] = len(summary.Cancelled)
	}

	s.send(ctx, event, data, ride.DriverID)
}

func (s *notificationService) send(ctx context.Context, event string, data map[string]interface{}, recipients ...primitive.ObjectID) {
	if s.broadcaster == nil {
		return
	}
	for _, userID := range recipients {
		if userID.IsZero() {
			continue
		}
		message := websocket.Message{
			Type:   event,
			RoomID: websocket.UserRoom(userID),
			UserID: userID,
			Data:   data,
		}
		if err := s.broadcaster.Broadcast(ctx, message); err != nil {
			s.logger.WithError(err).WithUserID(userID).WithField("event", event).Warn("Failed to publish notification")
		}
	}
}
