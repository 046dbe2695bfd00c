package handler

import (
	"donut-trade-backend/internal/adapter/http/dto"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/apperror"
	"donut-trade-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// DepositHandler handles the user side of the deposit workflow.
type DepositHandler struct {
	depositSvc ports.DepositService
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(depositSvc ports.DepositService) *DepositHandler {
	return &DepositHandler{depositSvc: depositSvc}
}

// Request handles POST /api/v1/deposits: claims an in-game payment and
// opens a pending deposit request.
func (h *DepositHandler) Request(c *gin.Context) {
	var req dto.DepositRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	deposit, err := h.depositSvc.Request(c.Request.Context(), currentAccountID(c), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewDepositResponse(deposit))
}

// ListMine handles GET /api/v1/deposits: the caller's deposit requests.
func (h *DepositHandler) ListMine(c *gin.Context) {
	deposits, err := h.depositSvc.ListByUser(c.Request.Context(), currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewDepositList(deposits))
}
