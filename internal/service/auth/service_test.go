package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/booking-api/internal/mocks"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func setupTestService() (*Service, *mocks.AccountRepository, auth.TokenService) {
	accounts := &mocks.AccountRepository{}
	tokens := auth.NewJWTService("test-secret", time.Hour)
	return NewService(accounts, tokens, security.NewBcryptHasher(bcrypt.MinCost)), accounts, tokens
}

func notFound() error {
	return fmt.Errorf("get account by email: %w", repository.ErrNotFound)
}

func TestRegister_Success(t *testing.T) {
	svc, accounts, _ := setupTestService()
	ctx := context.Background()

	accounts.On("GetByEmail", ctx, "ann@x.test").Return(nil, notFound())
	accounts.On("Create", ctx, mock.AnythingOfType("*model.Account")).Return(nil)

	account, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     " Ann ",
		Email:    "Ann@X.test",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ann", account.Name)
	assert.Equal(t, "ann@x.test", account.Email)
	assert.Equal(t, model.RoleUser, account.Role)
	assert.NotEqual(t, "secret1", account.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("secret1")))
	accounts.AssertExpectations(t)
}

func TestRegister_ExistingEmailDoesNotWrite(t *testing.T) {
	svc, accounts, _ := setupTestService()
	ctx := context.Background()

	accounts.On("GetByEmail", ctx, "ann@x.test").Return(&model.Account{Email: "ann@x.test"}, nil)

	_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Ann", Email: "ann@x.test", Password: "secret1"})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	appErr, _ := apperrors.As(err)
	assert.Equal(t, "Email already exists", appErr.Message)
	accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_RaceLostOnUniqueIndex(t *testing.T) {
	svc, accounts, _ := setupTestService()
	ctx := context.Background()

	accounts.On("GetByEmail", ctx, "ann@x.test").Return(nil, notFound())
	accounts.On("Create", ctx, mock.Anything).Return(fmt.Errorf("create account: %w", repository.ErrDuplicate))

	_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Ann", Email: "ann@x.test", Password: "secret1"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, accounts, _ := setupTestService()
	ctx := context.Background()

	accounts.On("GetByEmail", ctx, "ann@x.test").Return(nil, notFound())

	_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Ann", Email: "ann@x.test", Password: "123"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_LookupFailure(t *testing.T) {
	svc, accounts, _ := setupTestService()
	ctx := context.Background()

	accounts.On("GetByEmail", ctx, "ann@x.test").Return(nil, errors.New("connection reset"))

	_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Ann", Email: "ann@x.test", Password: "secret1"})
	require.Error(t, err)
	_, isApp := apperrors.As(err)
	assert.False(t, isApp)
}

func TestCreateAdmin(t *testing.T) {
	svc, accounts, _ := setupTestService()
	ctx := context.Background()

	accounts.On("GetByEmail", ctx, "root@x.test").Return(nil, notFound())
	accounts.On("Create", ctx, mock.MatchedBy(func(a *model.Account) bool {
		return a.Role == model.RoleAdmin && a.IsAdmin
	})).Return(nil)

	account, err := svc.CreateAdmin(ctx, "Root", "root@x.test", "rootpass")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, account.Role)
	accounts.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	svc, accounts, tokens := setupTestService()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &model.Account{
		Base:         model.Base{ID: uuid.New()},
		Email:        "ann@x.test",
		PasswordHash: string(hash),
		Role:         model.RoleDoctor,
	}
	accounts.On("GetByEmail", ctx, "ann@x.test").Return(account, nil)
	accounts.On("GetByEmail", ctx, "nobody@x.test").Return(nil, notFound())

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, &model.LoginRequest{Email: "ann@x.test", Password: "secret1"})
		require.NoError(t, err)
		assert.Same(t, account, resp.Account)

		claims, err := tokens.Validate(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, account.ID.String(), claims.UserID)
		assert.Equal(t, "doctor", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "ann@x.test", Password: "nope"})
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@x.test", Password: "secret1"})
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
		appErr, _ := apperrors.As(err)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	})
}
