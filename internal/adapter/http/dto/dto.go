package dto

import (
	"time"

	"donut-trade-backend/internal/core/domain"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,safe_id"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// CreateListingRequest is the request body for listing creation.
type CreateListingRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
	ItemType    string `json:"item_type" binding:"required,oneof=spawner tools armour farm stash other"`
	ItemName    string `json:"item_name" binding:"required,min=1,max=64,safe_id"`
	Quantity    int32  `json:"quantity" binding:"required,gt=0"`
	Price       int64  `json:"price" binding:"required,gt=0"`
}

// ListingResponse is the public view of a listing.
type ListingResponse struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ItemType    string `json:"item_type"`
	ItemName    string `json:"item_name"`
	Quantity    int32  `json:"quantity"`
	Price       int64  `json:"price"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// NewListingResponse maps a domain listing to its API shape.
func NewListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID.String(),
		SellerID:    l.SellerID.String(),
		Title:       l.Title,
		Description: l.Description,
		ItemType:    l.ItemType,
		ItemName:    l.ItemName,
		Quantity:    l.Quantity,
		Price:       l.Price,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

// NewListingList maps a slice of domain listings.
func NewListingList(listings []domain.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, NewListingResponse(&listings[i]))
	}
	return out
}

// TransactionResponse is the view of an escrow transaction.
type TransactionResponse struct {
	ID          string  `json:"id"`
	ListingID   string  `json:"listing_id"`
	BuyerID     string  `json:"buyer_id"`
	SellerID    string  `json:"seller_id"`
	ItemName    string  `json:"item_name"`
	Amount      int64   `json:"amount"`
	Status      string  `json:"status"`
	AdminID     *string `json:"admin_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// NewTransactionResponse maps a domain transaction to its API shape.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        t.ID.String(),
		ListingID: t.ListingID.String(),
		BuyerID:   t.BuyerID.String(),
		SellerID:  t.SellerID.String(),
		ItemName:  t.ItemName,
		Amount:    t.Amount,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.AdminID != nil {
		id := t.AdminID.String()
		resp.AdminID = &id
	}
	if t.CompletedAt != nil {
		at := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &at
	}
	return resp
}

// NewTransactionList maps a slice of domain transactions.
func NewTransactionList(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, NewTransactionResponse(&txns[i]))
	}
	return out
}

// DepositRequestBody is the request body for a deposit claim.
type DepositRequestBody struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// DepositResponse is the view of a deposit request.
type DepositResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Amount      int64   `json:"amount"`
	Status      string  `json:"status"`
	AdminID     *string `json:"admin_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

// NewDepositResponse maps a domain deposit request to its API shape.
func NewDepositResponse(d *domain.DepositRequest) DepositResponse {
	resp := DepositResponse{
		ID:        d.ID.String(),
		UserID:    d.UserID.String(),
		Amount:    d.Amount,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
	if d.AdminID != nil {
		id := d.AdminID.String()
		resp.AdminID = &id
	}
	if d.ProcessedAt != nil {
		at := d.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &at
	}
	return resp
}

// NewDepositList maps a slice of domain deposit requests.
func NewDepositList(reqs []domain.DepositRequest) []DepositResponse {
	out := make([]DepositResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, NewDepositResponse(&reqs[i]))
	}
	return out
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// AuditEntryResponse is the view of one audit log entry.
type AuditEntryResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	BalanceBefore int64  `json:"balance_before"`
	BalanceAfter  int64  `json:"balance_after"`
	Description   string `json:"description"`
	CreatedAt     string `json:"created_at"`
}

// NewAuditEntryList maps a slice of domain audit entries.
func NewAuditEntryList(entries []domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:            e.ID.String(),
			AccountID:     e.AccountID.String(),
			Kind:          string(e.Kind),
			Amount:        e.Amount,
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			Description:   e.Description,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

// AuditLogResponse wraps a paginated audit log page.
type AuditLogResponse struct {
	Entries  []AuditEntryResponse `json:"entries"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}
