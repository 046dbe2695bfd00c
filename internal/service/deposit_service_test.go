package service

import (
	"context"
	"testing"
	"time"

	"donut-trade-backend/internal/core/domain"
	"donut-trade-backend/internal/core/ports/mocks"
	"donut-trade-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type depositTestDeps struct {
	svc         *DepositServiceImpl
	depositRepo *mocks.MockDepositRepository
	ledger      *mocks.MockLedger
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupDepositService(t *testing.T) *depositTestDeps {
	ctrl := gomock.NewController(t)
	d := &depositTestDeps{
		depositRepo: mocks.NewMockDepositRepository(ctrl),
		ledger:      mocks.NewMockLedger(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewDepositService(d.depositRepo, d.ledger, d.transactor, nil, zerolog.Nop())
	return d
}

func pendingDeposit(userID uuid.UUID) *domain.DepositRequest {
	return &domain.DepositRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    50000,
		Status:    domain.DepositStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestDepositService_Request_Success(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.depositRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req *domain.DepositRequest) error {
			assert.Equal(t, userID, req.UserID)
			assert.Equal(t, int64(50000), req.Amount)
			assert.Equal(t, domain.DepositStatusPending, req.Status)
			return nil
		})

	req, err := d.svc.Request(ctx, userID, 50000)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositStatusPending, req.Status)
}

func TestDepositService_Request_InvalidAmount(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	for _, amount := range []int64{0, -500} {
		_, err := d.svc.Request(context.Background(), uuid.New(), amount)
		require.Error(t, err, "amount %d", amount)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "LED_002", appErr.Code)
	}
}

func TestDepositService_Approve_CreditsUser(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	adminID := uuid.New()
	req := pendingDeposit(uuid.New())
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.depositRepo.EXPECT().GetByIDForUpdate(ctx, tx, req.ID).Return(req, nil)
	d.ledger.EXPECT().Credit(ctx, tx, req.UserID, int64(50000), domain.AuditKindDeposit, gomock.Any()).
		Return(&domain.AuditEntry{BalanceAfter: 50000}, nil)
	d.depositRepo.EXPECT().UpdateStatus(ctx, tx, req.ID, domain.DepositStatusApproved, adminID, gomock.Any()).
		Return(nil)

	result, err := d.svc.Approve(ctx, req.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositStatusApproved, result.Status)
	require.NotNil(t, result.AdminID)
	assert.Equal(t, adminID, *result.AdminID)
}

func TestDepositService_Approve_AlreadyProcessed(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := pendingDeposit(uuid.New())
	req.Status = domain.DepositStatusApproved
	tx := &mockTx{}

	// Double-approve must not credit twice.
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.depositRepo.EXPECT().GetByIDForUpdate(ctx, tx, req.ID).Return(req, nil)

	_, err := d.svc.Approve(ctx, req.ID, uuid.New())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "MKT_004", appErr.Code)
}

func TestDepositService_Approve_NotFound(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	reqID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.depositRepo.EXPECT().GetByIDForUpdate(ctx, tx, reqID).Return(nil, nil)

	_, err := d.svc.Approve(ctx, reqID, uuid.New())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "MKT_005", appErr.Code)
}

func TestDepositService_Reject_NoBalanceChange(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	adminID := uuid.New()
	req := pendingDeposit(uuid.New())
	tx := &mockTx{}

	// No ledger expectation: a rejection must never touch the balance.
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.depositRepo.EXPECT().GetByIDForUpdate(ctx, tx, req.ID).Return(req, nil)
	d.depositRepo.EXPECT().UpdateStatus(ctx, tx, req.ID, domain.DepositStatusRejected, adminID, gomock.Any()).
		Return(nil)

	result, err := d.svc.Reject(ctx, req.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositStatusRejected, result.Status)
}

func TestDepositService_Reject_AlreadyProcessed(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := pendingDeposit(uuid.New())
	req.Status = domain.DepositStatusRejected
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.depositRepo.EXPECT().GetByIDForUpdate(ctx, tx, req.ID).Return(req, nil)

	_, err := d.svc.Reject(ctx, req.ID, uuid.New())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "MKT_004", appErr.Code)
}

func TestDepositService_ListPending(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	reqs := []domain.DepositRequest{*pendingDeposit(uuid.New()), *pendingDeposit(uuid.New())}

	d.depositRepo.EXPECT().ListByStatus(ctx, domain.DepositStatusPending).Return(reqs, nil)

	result, err := d.svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}
