package handler

import (
	"strconv"

	"donut-trade-backend/internal/adapter/http/dto"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/apperror"
	"donut-trade-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles escrow settlement, deposit processing and the
// audit log. All routes require the admin role.
type AdminHandler struct {
	escrowSvc    ports.EscrowService
	depositSvc   ports.DepositService
	reportingSvc ports.ReportingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(escrowSvc ports.EscrowService, depositSvc ports.DepositService, reportingSvc ports.ReportingService) *AdminHandler {
	return &AdminHandler{
		escrowSvc:    escrowSvc,
		depositSvc:   depositSvc,
		reportingSvc: reportingSvc,
	}
}

// Deliver handles POST /api/v1/admin/transactions/:id/deliver: confirms
// in-game delivery and releases the held funds to the seller.
func (h *AdminHandler) Deliver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	txn, err := h.escrowSvc.Deliver(c.Request.Context(), id, currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionResponse(txn))
}

// Cancel handles POST /api/v1/admin/transactions/:id/cancel: refunds the
// buyer in full and reactivates the listing.
func (h *AdminHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	txn, err := h.escrowSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionResponse(txn))
}

// EscrowQueue handles GET /api/v1/admin/transactions: open escrow
// transactions awaiting settlement, oldest first.
func (h *AdminHandler) EscrowQueue(c *gin.Context) {
	txns, err := h.reportingSvc.ListEscrowQueue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionList(txns))
}

// Approve handles POST /api/v1/admin/deposits/:id/approve: credits the
// user and closes the deposit request.
func (h *AdminHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid deposit id"))
		return
	}

	deposit, err := h.depositSvc.Approve(c.Request.Context(), id, currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewDepositResponse(deposit))
}

// Reject handles POST /api/v1/admin/deposits/:id/reject: closes the
// deposit request without crediting.
func (h *AdminHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid deposit id"))
		return
	}

	deposit, err := h.depositSvc.Reject(c.Request.Context(), id, currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewDepositResponse(deposit))
}

// PendingDeposits handles GET /api/v1/admin/deposits: the approval queue,
// oldest first.
func (h *AdminHandler) PendingDeposits(c *gin.Context) {
	deposits, err := h.depositSvc.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewDepositList(deposits))
}

// AuditLog handles GET /api/v1/admin/audit: the paginated global audit log.
func (h *AdminHandler) AuditLog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	entries, total, err := h.reportingSvc.ListAuditLog(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	response.OK(c, dto.AuditLogResponse{
		Entries:  dto.NewAuditEntryList(entries),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
