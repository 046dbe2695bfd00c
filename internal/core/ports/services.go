package ports

import (
	"context"
	"time"

	"donut-trade-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Ledger is the sole authority for balance mutation. Both operations run
// inside the caller's database transaction: they lock the account row,
// enforce the non-negative invariant, and append exactly one audit entry
// atomically with the balance change.
type Ledger interface {
	// Debit decreases the balance. Fails with InsufficientFunds if the
	// account holds less than amount; no state changes on failure.
	Debit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64, kind domain.AuditKind, description string) (*domain.AuditEntry, error)
	// Credit increases the balance. Fails with InvalidAmount if amount <= 0.
	Credit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64, kind domain.AuditKind, description string) (*domain.AuditEntry, error)
}

// EscrowService orchestrates the purchase -> hold -> settle flow.
type EscrowService interface {
	// Purchase debits the buyer, reserves the listing and opens an escrow
	// transaction as a single atomic unit.
	Purchase(ctx context.Context, listingID, buyerID uuid.UUID) (*domain.Transaction, error)
	// Deliver releases the held funds to the seller and marks the listing sold.
	Deliver(ctx context.Context, transactionID, adminID uuid.UUID) (*domain.Transaction, error)
	// Cancel refunds the buyer in full and reactivates the listing.
	Cancel(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
}

// ListingService defines catalog business logic.
type ListingService interface {
	Create(ctx context.Context, req CreateListingRequest) (*domain.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	// BrowseActive serves the public catalog, possibly from cache.
	BrowseActive(ctx context.Context) ([]domain.Listing, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Listing, error)
	// Withdraw soft-cancels an active listing owned by sellerID.
	Withdraw(ctx context.Context, listingID, sellerID uuid.UUID) error
}

// CreateListingRequest holds validated input for listing creation.
type CreateListingRequest struct {
	SellerID    uuid.UUID
	Title       string
	Description string
	ItemType    string
	ItemName    string
	Quantity    int32
	Price       int64
}

// DepositService defines the deposit approval workflow.
type DepositService interface {
	Request(ctx context.Context, userID uuid.UUID, amount int64) (*domain.DepositRequest, error)
	Approve(ctx context.Context, requestID, adminID uuid.UUID) (*domain.DepositRequest, error)
	Reject(ctx context.Context, requestID, adminID uuid.UUID) (*domain.DepositRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.DepositRequest, error)
	ListPending(ctx context.Context) ([]domain.DepositRequest, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// ReportingService defines read-only query surfaces. Reads are
// unsynchronized, eventually-consistent views.
type ReportingService interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
	BalanceHistory(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.AuditEntry, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
	ListEscrowQueue(ctx context.Context) ([]domain.Transaction, error)
	ListAuditLog(ctx context.Context, page, pageSize int) ([]domain.AuditEntry, int64, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, role domain.AccountRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.AccountRole
}

// EventPublisher emits change notifications for the presentation layer.
// Publishing is best-effort and happens after commit; a failed publish is
// logged, never rolled back.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event any) error
}

// CatalogCache caches the active-listing page for unsynchronized catalog reads.
type CatalogCache interface {
	GetActive(ctx context.Context) ([]domain.Listing, error) // nil, nil on miss
	SetActive(ctx context.Context, listings []domain.Listing, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
