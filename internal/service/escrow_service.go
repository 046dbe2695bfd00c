package service

import (
	"context"
	"fmt"
	"time"

	"donut-trade-backend/internal/core/domain"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EscrowServiceImpl implements ports.EscrowService.
//
// Every flow runs in a single database transaction: the buyer/seller account
// row is locked by the ledger, the listing transition is a guarded
// compare-and-swap, and the escrow row is locked before settlement. A failed
// step rolls the whole unit back, so no partial debit or half-reserved
// listing is ever visible.
type EscrowServiceImpl struct {
	txRepo      ports.TransactionRepository
	listingRepo ports.ListingRepository
	ledger      ports.Ledger
	transactor  ports.DBTransactor
	cache       ports.CatalogCache   // nil = caching disabled
	publisher   ports.EventPublisher // nil = notifications disabled
	log         zerolog.Logger
}

// NewEscrowService creates a new EscrowServiceImpl.
func NewEscrowService(
	txRepo ports.TransactionRepository,
	listingRepo ports.ListingRepository,
	ledger ports.Ledger,
	transactor ports.DBTransactor,
	cache ports.CatalogCache,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *EscrowServiceImpl {
	return &EscrowServiceImpl{
		txRepo:      txRepo,
		listingRepo: listingRepo,
		ledger:      ledger,
		transactor:  transactor,
		cache:       cache,
		publisher:   publisher,
		log:         log,
	}
}

// Purchase opens an escrow: debit buyer + reserve listing + create
// transaction, all-or-nothing.
func (s *EscrowServiceImpl) Purchase(ctx context.Context, listingID, buyerID uuid.UUID) (*domain.Transaction, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("Listing")
	}
	if !listing.IsPurchasable() {
		return nil, apperror.ErrNotAvailable()
	}
	if listing.SellerID == buyerID {
		return nil, apperror.ErrSelfTrade()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	entry, err := s.ledger.Debit(ctx, dbTx, buyerID, listing.Price, domain.AuditKindPurchase, "Purchase: "+listing.ItemName)
	if err != nil {
		return nil, err
	}

	// Guarded reservation. Losing the race to another buyer rolls the
	// debit back with the transaction; the loser is never charged.
	reserved, err := s.listingRepo.UpdateStatus(ctx, dbTx, listingID, domain.ListingStatusActive, domain.ListingStatusPending)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reserve listing: %w", err))
	}
	if !reserved {
		return nil, apperror.ErrNotAvailable()
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
		ItemName:  listing.ItemName,
		Amount:    listing.Price, // snapshot; later price edits do not apply
		Status:    domain.TransactionStatusEscrow,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create escrow transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateCatalog(ctx)
	s.notifyListing(ctx, listingID, domain.ListingStatusPending)
	s.notifyTransaction(ctx, txn)
	s.notifyBalance(ctx, buyerID, entry.BalanceAfter, domain.AuditKindPurchase)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("listing_id", listingID.String()).
		Str("buyer_id", buyerID.String()).
		Int64("amount", txn.Amount).
		Msg("escrow opened")

	return txn, nil
}

// Deliver settles an escrow in the seller's favor.
func (s *EscrowServiceImpl) Deliver(ctx context.Context, transactionID, adminID uuid.UUID) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Row lock + status guard make settlement single-fire: a concurrent
	// deliver or cancel observes the terminal status and fails cleanly.
	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if txn.IsSettled() {
		return nil, apperror.ErrInvalidState("Transaction")
	}

	entry, err := s.ledger.Credit(ctx, dbTx, txn.SellerID, txn.Amount, domain.AuditKindSale, "Sale: "+txn.ItemName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.txRepo.Settle(ctx, dbTx, transactionID, domain.TransactionStatusCompleted, &adminID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("settle transaction: %w", err))
	}

	sold, err := s.listingRepo.UpdateStatus(ctx, dbTx, txn.ListingID, domain.ListingStatusPending, domain.ListingStatusSold)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("finalize listing: %w", err))
	}
	if !sold {
		return nil, apperror.InternalError(fmt.Errorf("listing %s not pending during delivery", txn.ListingID))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.AdminID = &adminID
	txn.CompletedAt = &now

	s.invalidateCatalog(ctx)
	s.notifyListing(ctx, txn.ListingID, domain.ListingStatusSold)
	s.notifyTransaction(ctx, txn)
	s.notifyBalance(ctx, txn.SellerID, entry.BalanceAfter, domain.AuditKindSale)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("admin_id", adminID.String()).
		Int64("amount", txn.Amount).
		Msg("escrow delivered")

	return txn, nil
}

// Cancel settles an escrow in the buyer's favor: full refund, no fee.
func (s *EscrowServiceImpl) Cancel(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if txn.IsSettled() {
		return nil, apperror.ErrInvalidState("Transaction")
	}

	entry, err := s.ledger.Credit(ctx, dbTx, txn.BuyerID, txn.Amount, domain.AuditKindRefund, "Refund: "+txn.ItemName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.txRepo.Settle(ctx, dbTx, transactionID, domain.TransactionStatusCancelled, nil, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("settle transaction: %w", err))
	}

	reactivated, err := s.listingRepo.UpdateStatus(ctx, dbTx, txn.ListingID, domain.ListingStatusPending, domain.ListingStatusActive)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reactivate listing: %w", err))
	}
	if !reactivated {
		return nil, apperror.InternalError(fmt.Errorf("listing %s not pending during cancel", txn.ListingID))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	txn.Status = domain.TransactionStatusCancelled
	txn.CompletedAt = &now

	s.invalidateCatalog(ctx)
	s.notifyListing(ctx, txn.ListingID, domain.ListingStatusActive)
	s.notifyTransaction(ctx, txn)
	s.notifyBalance(ctx, txn.BuyerID, entry.BalanceAfter, domain.AuditKindRefund)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Int64("amount", txn.Amount).
		Msg("escrow cancelled, buyer refunded")

	return txn, nil
}

// --- post-commit side effects (best-effort) ---

func (s *EscrowServiceImpl) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate catalog cache")
	}
}

func (s *EscrowServiceImpl) notifyListing(ctx context.Context, listingID uuid.UUID, status domain.ListingStatus) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, domain.SubjectListingChanged, domain.ListingChangedEvent{
		ListingID:  listingID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("listing_id", listingID.String()).Msg("failed to publish listing event")
	}
}

func (s *EscrowServiceImpl) notifyTransaction(ctx context.Context, txn *domain.Transaction) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, domain.SubjectTransactionChanged, domain.TransactionChangedEvent{
		TransactionID: txn.ID,
		ListingID:     txn.ListingID,
		Status:        txn.Status,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("tx_id", txn.ID.String()).Msg("failed to publish transaction event")
	}
}

func (s *EscrowServiceImpl) notifyBalance(ctx context.Context, accountID uuid.UUID, balance int64, kind domain.AuditKind) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, domain.SubjectBalanceChanged, domain.BalanceChangedEvent{
		AccountID:  accountID,
		Balance:    balance,
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID.String()).Msg("failed to publish balance event")
	}
}
