package handler

import (
	"donut-trade-backend/internal/adapter/http/dto"
	"donut-trade-backend/internal/adapter/http/middleware"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/apperror"
	"donut-trade-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListingHandler handles catalog and purchase endpoints.
type ListingHandler struct {
	listingSvc ports.ListingService
	escrowSvc  ports.EscrowService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingSvc ports.ListingService, escrowSvc ports.EscrowService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc, escrowSvc: escrowSvc}
}

// Create handles POST /api/v1/listings.
func (h *ListingHandler) Create(c *gin.Context) {
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	listing, err := h.listingSvc.Create(c.Request.Context(), ports.CreateListingRequest{
		SellerID:    currentAccountID(c),
		Title:       req.Title,
		Description: req.Description,
		ItemType:    req.ItemType,
		ItemName:    req.ItemName,
		Quantity:    req.Quantity,
		Price:       req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewListingResponse(listing))
}

// Browse handles GET /api/v1/listings: the public active catalog.
func (h *ListingHandler) Browse(c *gin.Context) {
	listings, err := h.listingSvc.BrowseActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewListingList(listings))
}

// Get handles GET /api/v1/listings/:id.
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	listing, err := h.listingSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewListingResponse(listing))
}

// Mine handles GET /api/v1/listings/mine: the caller's own listings.
func (h *ListingHandler) Mine(c *gin.Context) {
	listings, err := h.listingSvc.ListBySeller(c.Request.Context(), currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewListingList(listings))
}

// Withdraw handles DELETE /api/v1/listings/:id: cancels the caller's own
// active listing.
func (h *ListingHandler) Withdraw(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	if err := h.listingSvc.Withdraw(c.Request.Context(), id, currentAccountID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"cancelled": true})
}

// Purchase handles POST /api/v1/listings/:id/purchase: opens an escrow
// transaction for the listing.
func (h *ListingHandler) Purchase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	txn, err := h.escrowSvc.Purchase(c.Request.Context(), id, currentAccountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewTransactionResponse(txn))
}

// currentAccountID returns the authenticated account ID set by JWTAuth.
func currentAccountID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.CtxAccountID).(uuid.UUID)
}
