package routes

import (
	handlers "goride-ledger/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupWalletRoutes sets up routes for the caller's own wallet
func SetupWalletRoutes(r *gin.RouterGroup, walletHandler *handlers.WalletHandler) {
	wallet := r.Group("/wallet")
	{
		wallet.GET("/balance", walletHandler.GetBalance)
		wallet.GET("/transactions", walletHandler.GetTransactions)
		wallet.POST("/topup", walletHandler.TopUp)
		wallet.POST("/withdraw", walletHandler.Withdraw)
	}
}
