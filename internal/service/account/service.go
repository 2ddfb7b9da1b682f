package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

type Service struct {
	accounts repository.AccountRepository
	hasher   security.PasswordHasher
}

func NewService(accounts repository.AccountRepository, hasher security.PasswordHasher) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Update applies the non-nil fields of req. Role and notifications are not
// writable here.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		account.Address = *req.Address
	}
	if req.MedicalHistory != nil {
		account.MedicalHistory = req.MedicalHistory
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != account.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			account.Email = email
		}
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.Validation("validation failed", []apperrors.FieldError{
				{Field: "password", Message: err.Error()},
			})
		}
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Email already exists", err)
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.Conflict("Email already exists", nil)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check email: %w", err)
	}
}

func (s *Service) List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error) {
	accounts, err := s.accounts.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *Service) Notifications(ctx context.Context, id uuid.UUID) (*model.NotificationsView, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &model.NotificationsView{
		Unseen: account.Notifications,
		Seen:   account.SeenNotifications,
	}
	if view.Unseen == nil {
		view.Unseen = model.NotificationList{}
	}
	if view.Seen == nil {
		view.Seen = model.NotificationList{}
	}
	return view, nil
}

func (s *Service) MarkAllSeen(ctx context.Context, id uuid.UUID) (*model.NotificationsView, error) {
	if err := s.accounts.MarkNotificationsSeen(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to mark notifications seen: %w", err)
	}
	return s.Notifications(ctx, id)
}

func (s *Service) ClearSeen(ctx context.Context, id uuid.UUID) (*model.NotificationsView, error) {
	if err := s.accounts.ClearSeenNotifications(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to clear seen notifications: %w", err)
	}
	return s.Notifications(ctx, id)
}
