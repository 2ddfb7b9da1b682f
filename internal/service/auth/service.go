package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

const (
	msgEmailExists        = "Email already exists"
	msgInvalidCredentials = "Invalid email or password"
)

type Service struct {
	accounts repository.AccountRepository
	tokens   auth.TokenService
	hasher   security.PasswordHasher
}

func NewService(accounts repository.AccountRepository, tokens auth.TokenService, hasher security.PasswordHasher) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Account, error) {
	account := &model.Account{
		Name:           strings.TrimSpace(req.Name),
		Email:          normalizeEmail(req.Email),
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
		Role:           model.RoleUser,
	}
	if err := s.create(ctx, account, req.Password); err != nil {
		return nil, err
	}
	return account, nil
}

// CreateAdmin bootstraps an administrator. Admins cannot self-register.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*model.Account, error) {
	account := &model.Account{
		Name:    strings.TrimSpace(name),
		Email:   normalizeEmail(email),
		Role:    model.RoleAdmin,
		IsAdmin: true,
	}
	if err := s.create(ctx, account, password); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) create(ctx context.Context, account *model.Account, password string) error {
	_, err := s.accounts.GetByEmail(ctx, account.Email)
	switch {
	case err == nil:
		return apperrors.Conflict(msgEmailExists, nil)
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooShort) {
		return apperrors.Validation("validation failed", []apperrors.FieldError{
			{Field: "password", Message: err.Error()},
		})
	}
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = hash

	// The unique index catches a registration racing past the check above.
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.Conflict(msgEmailExists, err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized(msgInvalidCredentials, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(msgInvalidCredentials, nil)
	}

	token, expiresAt, err := s.tokens.Generate(account.ID, account.Email, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
