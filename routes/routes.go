package routes

import (
	handlers "goride-ledger/internal/handlers/shared"
	"goride-ledger/internal/middleware"
	"goride-ledger/pkg/logger"
	"goride-ledger/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Wallet    *handlers.WalletHandler
	Ride      *handlers.RideHandler
	Booking   *handlers.BookingHandler
	Rating    *handlers.RatingHandler
	Admin     *handlers.AdminHandler
	Health    *handlers.HealthHandler
	WebSocket *websocket.Handler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *logger.Logger
}

// NewRouter builds the engine with global middleware and every API route.
func NewRouter(h *Handlers, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigins))

	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthRequired(opts.JWTSecret))
	{
		SetupWalletRoutes(v1, h.Wallet)
		SetupRideRoutes(v1, h.Ride)
		SetupBookingRoutes(v1, h.Booking)
		SetupRatingRoutes(v1, h.Rating)
		SetupAdminRoutes(v1, h.Admin)

		if h.WebSocket != nil {
			v1.GET("/ws", h.WebSocket.HandleWebSocket)
		}
	}

	return router
}
