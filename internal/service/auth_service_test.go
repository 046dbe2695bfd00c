package service

import (
	"context"
	"testing"
	"time"

	"donut-trade-backend/internal/core/domain"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/internal/core/ports/mocks"
	"donut-trade-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc         *AuthServiceImpl
	accountRepo *mocks.MockAccountRepository
	hashSvc     *mocks.MockHashService
	tokenSvc    *mocks.MockTokenService
	ctrl        *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		hashSvc:     mocks.NewMockHashService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuthService(d.accountRepo, d.hashSvc, d.tokenSvc, zerolog.Nop())
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{Username: "steve", Email: "steve@example.com", Password: "hunter22"}

	d.accountRepo.EXPECT().GetByEmail(ctx, req.Email).Return(nil, nil)
	d.accountRepo.EXPECT().GetByUsername(ctx, req.Username).Return(nil, nil)
	d.hashSvc.EXPECT().Hash(req.Password).Return("hashed", nil)
	d.accountRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Account) error {
			assert.Equal(t, "steve", a.Username)
			assert.Equal(t, domain.AccountRoleUser, a.Role)
			assert.Equal(t, int64(0), a.Balance, "new accounts start empty")
			return nil
		})

	account, err := d.svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{Username: "steve", Email: "steve@example.com", Password: "hunter22"}

	d.accountRepo.EXPECT().GetByEmail(ctx, req.Email).Return(&domain.Account{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{Username: "steve", Email: "steve@example.com", Password: "hunter22"}

	d.accountRepo.EXPECT().GetByEmail(ctx, req.Email).Return(nil, nil)
	d.accountRepo.EXPECT().GetByUsername(ctx, req.Username).Return(&domain.Account{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := &domain.Account{
		ID:           uuid.New(),
		Email:        "steve@example.com",
		PasswordHash: "hashed",
		Role:         domain.AccountRoleUser,
	}
	expiresAt := time.Now().Add(24 * time.Hour)

	d.accountRepo.EXPECT().GetByEmail(ctx, account.Email).Return(account, nil)
	d.hashSvc.EXPECT().Verify("hunter22", "hashed").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(account.ID, domain.AccountRoleUser).Return("jwt-token", expiresAt, nil)

	token, exp, err := d.svc.Login(ctx, account.Email, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiresAt, exp)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByEmail(ctx, "nobody@example.com").Return(nil, nil)

	_, _, err := d.svc.Login(ctx, "nobody@example.com", "pw")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := &domain.Account{ID: uuid.New(), Email: "steve@example.com", PasswordHash: "hashed"}

	d.accountRepo.EXPECT().GetByEmail(ctx, account.Email).Return(account, nil)
	d.hashSvc.EXPECT().Verify("wrong", "hashed").Return(false, nil)

	_, _, err := d.svc.Login(ctx, account.Email, "wrong")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}
