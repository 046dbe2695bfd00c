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

// DepositServiceImpl implements ports.DepositService.
// A deposit request carries no balance effect until an admin approves it;
// approval credits the user inside one transaction with the status flip.
type DepositServiceImpl struct {
	depositRepo ports.DepositRepository
	ledger      ports.Ledger
	transactor  ports.DBTransactor
	publisher   ports.EventPublisher // nil = notifications disabled
	log         zerolog.Logger
}

// NewDepositService creates a new DepositServiceImpl.
func NewDepositService(
	depositRepo ports.DepositRepository,
	ledger ports.Ledger,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *DepositServiceImpl {
	return &DepositServiceImpl{
		depositRepo: depositRepo,
		ledger:      ledger,
		transactor:  transactor,
		publisher:   publisher,
		log:         log,
	}
}

// Request records a user's claim of an off-platform payment.
func (s *DepositServiceImpl) Request(ctx context.Context, userID uuid.UUID, amount int64) (*domain.DepositRequest, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	req := &domain.DepositRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Status:    domain.DepositStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.depositRepo.Create(ctx, req); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create deposit request: %w", err))
	}

	s.notifyDeposit(ctx, req)

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Msg("deposit requested")

	return req, nil
}

// Approve credits the user and marks the request approved, atomically.
func (s *DepositServiceImpl) Approve(ctx context.Context, requestID, adminID uuid.UUID) (*domain.DepositRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	req, err := s.depositRepo.GetByIDForUpdate(ctx, dbTx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock deposit request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("Deposit request")
	}
	if req.IsProcessed() {
		return nil, apperror.ErrInvalidState("Deposit request")
	}

	entry, err := s.ledger.Credit(ctx, dbTx, req.UserID, req.Amount, domain.AuditKindDeposit, "Deposit approved")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.depositRepo.UpdateStatus(ctx, dbTx, requestID, domain.DepositStatusApproved, adminID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("approve deposit request: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	req.Status = domain.DepositStatusApproved
	req.AdminID = &adminID
	req.ProcessedAt = &now

	s.notifyDeposit(ctx, req)
	s.notifyBalance(ctx, req.UserID, entry.BalanceAfter)

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("admin_id", adminID.String()).
		Int64("amount", req.Amount).
		Msg("deposit approved")

	return req, nil
}

// Reject marks the request rejected; the balance is untouched.
func (s *DepositServiceImpl) Reject(ctx context.Context, requestID, adminID uuid.UUID) (*domain.DepositRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	req, err := s.depositRepo.GetByIDForUpdate(ctx, dbTx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock deposit request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("Deposit request")
	}
	if req.IsProcessed() {
		return nil, apperror.ErrInvalidState("Deposit request")
	}

	now := time.Now().UTC()
	if err := s.depositRepo.UpdateStatus(ctx, dbTx, requestID, domain.DepositStatusRejected, adminID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reject deposit request: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	req.Status = domain.DepositStatusRejected
	req.AdminID = &adminID
	req.ProcessedAt = &now

	s.notifyDeposit(ctx, req)

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("admin_id", adminID.String()).
		Msg("deposit rejected")

	return req, nil
}

// ListByUser returns a user's own deposit requests.
func (s *DepositServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.DepositRequest, error) {
	reqs, err := s.depositRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list deposit requests: %w", err))
	}
	return reqs, nil
}

// ListPending returns the admin approval queue.
func (s *DepositServiceImpl) ListPending(ctx context.Context) ([]domain.DepositRequest, error) {
	reqs, err := s.depositRepo.ListByStatus(ctx, domain.DepositStatusPending)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending deposits: %w", err))
	}
	return reqs, nil
}

func (s *DepositServiceImpl) notifyDeposit(ctx context.Context, req *domain.DepositRequest) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, domain.SubjectDepositChanged, domain.DepositChangedEvent{
		RequestID:  req.ID,
		UserID:     req.UserID,
		Status:     req.Status,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("request_id", req.ID.String()).Msg("failed to publish deposit event")
	}
}

func (s *DepositServiceImpl) notifyBalance(ctx context.Context, accountID uuid.UUID, balance int64) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, domain.SubjectBalanceChanged, domain.BalanceChangedEvent{
		AccountID:  accountID,
		Balance:    balance,
		Kind:       domain.AuditKindDeposit,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID.String()).Msg("failed to publish balance event")
	}
}
