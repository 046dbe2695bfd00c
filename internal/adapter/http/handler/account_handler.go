package handler

import (
	"strconv"

	"donut-trade-backend/internal/adapter/http/dto"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles balance and history endpoints for the caller.
type AccountHandler struct {
	reportingSvc ports.ReportingService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(reportingSvc ports.ReportingService) *AccountHandler {
	return &AccountHandler{reportingSvc: reportingSvc}
}

// GetBalance handles GET /api/v1/account/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	balance, err := h.reportingSvc.GetBalance(c.Request.Context(), currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// History handles GET /api/v1/account/history: the caller's audit entries,
// newest first.
func (h *AccountHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.reportingSvc.BalanceHistory(c.Request.Context(), currentAccountID(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewAuditEntryList(entries))
}

// ListTransactions handles GET /api/v1/transactions: escrow transactions
// where the caller is buyer or seller.
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	txns, err := h.reportingSvc.ListTransactions(c.Request.Context(), currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionList(txns))
}
