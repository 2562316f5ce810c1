package handlers

import (
	"goride-ledger/internal/services"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	base
	reconciliationService services.ReconciliationService
	walletService         services.WalletService
}

func NewAdminHandler(reconciliationService services.ReconciliationService, walletService services.WalletService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		base:                  base{logger: log},
		reconciliationService: reconciliationService,
		walletService:         walletService,
	}
}

// RunReconciliation runs one sweep synchronously and returns its report
func (h *AdminHandler) RunReconciliation(c *gin.Context) {
	report, err := h.reconciliationService.Run(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Ledger is consistent"
	if !report.Healthy() {
		message = "Ledger inconsistencies detected"
	}
	utils.SuccessResponse(c, message, report)
}

// VerifyWallet replays one user's ledger against their wallet
func (h *AdminHandler) VerifyWallet(c *gin.Context) {
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	report, err := h.walletService.VerifyWallet(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet verified", report)
}
