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

type WalletHandler struct {
	base
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService, log *logger.Logger) *WalletHandler {
	return &WalletHandler{
		base:          base{logger: log},
		walletService: walletService,
	}
}

// GetBalance returns the caller's available and held funds
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Balance retrieved successfully", balance)
}

// GetTransactions lists the caller's ledger, newest first
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.walletService.GetTransactions(c.Request.Context(), userID, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	listResponse(c, "Transactions retrieved successfully", transactions, params, total)
}

func (h *WalletHandler) TopUp(c *gin.Context) {
	h.mutate(c, "Wallet topped up successfully", h.walletService.TopUp)
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	h.mutate(c, "Withdrawal completed successfully", h.walletService.Withdraw)
}

func (h *WalletHandler) mutate(c *gin.Context, message string, apply func(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Transaction, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.WalletAmountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if respondValidation(c, validators.ValidateWalletAmount(&request)) {
		return
	}

	transaction, err := apply(c.Request.Context(), userID, request.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.CreatedResponse(c, message, transaction)
}
