package service

import (
	"context"
	"fmt"

	"donut-trade-backend/internal/core/domain"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/apperror"

	"github.com/google/uuid"
)

// ReportingServiceImpl implements ports.ReportingService. All queries read
// without locks; a read concurrent with a settlement may observe the state
// from just before it.
type ReportingServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	auditRepo   ports.AuditRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	auditRepo ports.AuditRepository,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		auditRepo:   auditRepo,
	}
}

// GetBalance returns the current balance of an account.
func (s *ReportingServiceImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrNotFound("Account")
	}
	return account.Balance, nil
}

// BalanceHistory returns the most recent audit entries for an account,
// newest first.
func (s *ReportingServiceImpl) BalanceHistory(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.auditRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list audit entries: %w", err))
	}
	return entries, nil
}

// ListTransactions returns transactions where the account is buyer or seller.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	txns, err := s.txRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// ListEscrowQueue returns all transactions awaiting admin settlement.
func (s *ReportingServiceImpl) ListEscrowQueue(ctx context.Context) ([]domain.Transaction, error) {
	txns, err := s.txRepo.ListByStatus(ctx, domain.TransactionStatusEscrow)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list escrow queue: %w", err))
	}
	return txns, nil
}

// ListAuditLog returns a page of the global audit log with the total count.
func (s *ReportingServiceImpl) ListAuditLog(ctx context.Context, page, pageSize int) ([]domain.AuditEntry, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	entries, total, err := s.auditRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list audit log: %w", err))
	}
	return entries, total, nil
}
