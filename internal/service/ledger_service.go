package service

import (
	"context"
	"fmt"
	"time"

	"donut-trade-backend/internal/core/domain"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.Ledger with pessimistic locking.
// Both operations run inside the caller's transaction: the account row is
// locked before the balance is read, so concurrent mutations on the same
// account serialize and no update is ever lost. The audit entry is written
// in the same transaction and commits or rolls back with the balance change.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	auditRepo   ports.AuditRepository
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(accountRepo ports.AccountRepository, auditRepo ports.AuditRepository, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		log:         log,
	}
}

// Debit decreases an account balance, rejecting any mutation that would
// take it below zero.
func (s *LedgerServiceImpl) Debit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64, kind domain.AuditKind, description string) (*domain.AuditEntry, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	if account.Balance < amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	newBalance := account.Balance - amount
	if err := s.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := &domain.AuditEntry{
		ID:            uuid.New(),
		AccountID:     accountID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, tx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append audit entry: %w", err))
	}

	s.log.Debug().
		Str("account_id", accountID.String()).
		Str("kind", string(kind)).
		Int64("amount", amount).
		Int64("balance_after", newBalance).
		Msg("ledger debit")

	return entry, nil
}

// Credit increases an account balance.
func (s *LedgerServiceImpl) Credit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64, kind domain.AuditKind, description string) (*domain.AuditEntry, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	newBalance := account.Balance + amount
	if err := s.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := &domain.AuditEntry{
		ID:            uuid.New(),
		AccountID:     accountID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, tx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append audit entry: %w", err))
	}

	s.log.Debug().
		Str("account_id", accountID.String()).
		Str("kind", string(kind)).
		Int64("amount", amount).
		Int64("balance_after", newBalance).
		Msg("ledger credit")

	return entry, nil
}
