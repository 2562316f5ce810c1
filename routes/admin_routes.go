package routes

import (
	handlers "goride-ledger/internal/handlers/shared"
	"goride-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up ledger audit routes
func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler) {
	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/reconciliation", adminHandler.RunReconciliation)
		admin.GET("/wallets/:id/verify", adminHandler.VerifyWallet)
	}
}
