package ports

import (
	"context"
	"time"

	"donut-trade-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// GetByIDForUpdate locks the account row. MUST be called within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListActive(ctx context.Context) ([]domain.Listing, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Listing, error)
	// UpdateStatus performs a guarded compare-and-swap: the row moves from
	// `from` to `to` only if it is currently in `from`. Returns false when
	// the guard fails (e.g. a concurrent purchase already reserved it).
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.ListingStatus) (bool, error)
}

// TransactionRepository defines persistence operations for escrow transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// GetByIDForUpdate locks the escrow row so deliver/cancel are single-fire.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	Settle(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, adminID *uuid.UUID, completedAt time.Time) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
	ListByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error)
}

// DepositRepository defines persistence operations for deposit requests.
type DepositRepository interface {
	Create(ctx context.Context, req *domain.DepositRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DepositRequest, error)
	// GetByIDForUpdate locks the request row so approve/reject are single-fire.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.DepositRequest, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.DepositStatus, adminID uuid.UUID, processedAt time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.DepositRequest, error)
	ListByStatus(ctx context.Context, status domain.DepositStatus) ([]domain.DepositRequest, error)
}

// AuditRepository defines persistence for the append-only audit log.
// Entries are written in the same database transaction as the balance
// mutation they record; there is no update or delete.
type AuditRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.AuditEntry, error)
	List(ctx context.Context, page, pageSize int) ([]domain.AuditEntry, int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
