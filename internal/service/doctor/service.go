package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

const (
	approvedCacheKey = "doctors:approved"
	approvedCacheTTL = time.Minute
)

type Service struct {
	doctors  repository.DoctorRepository
	accounts repository.AccountRepository
	notifier notification.Notifier
	metrics  *metrics.Metrics
	cache    *cache.Cache
}

func NewService(doctors repository.DoctorRepository, accounts repository.AccountRepository, notifier notification.Notifier, m *metrics.Metrics) *Service {
	return &Service{
		doctors:  doctors,
		accounts: accounts,
		notifier: notifier,
		metrics:  m,
		cache:    cache.New(approvedCacheTTL, 2*approvedCacheTTL),
	}
}

// Apply creates a pending profile for the account and tells the admins.
func (s *Service) Apply(ctx context.Context, accountID uuid.UUID, req *model.ApplyDoctorRequest) (*model.DoctorProfile, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureNoProfile(ctx, accountID, email); err != nil {
		return nil, err
	}

	doctor := &model.DoctorProfile{
		UserID:              accountID,
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		Phone:               req.Phone,
		Email:               email,
		Website:             req.Website,
		Address:             req.Address,
		Specialization:      req.Specialization,
		Experience:          req.Experience,
		FeesPerConsultation: req.FeesPerConsultation,
		Status:              model.DoctorStatusPending,
		Timings:             req.Timings,
	}

	if err := s.doctors.Create(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Doctor profile already exists", err)
		}
		return nil, fmt.Errorf("failed to create doctor profile: %w", err)
	}

	s.notifier.NotifyAdmins(ctx, model.Notification{
		Type:        model.NotificationApplyDoctor,
		Message:     fmt.Sprintf("%s has applied for a doctor account", account.Name),
		OnClickPath: "/admin/doctors",
	})

	return doctor, nil
}

func (s *Service) ensureNoProfile(ctx context.Context, accountID uuid.UUID, email string) error {
	if _, err := s.doctors.GetByUserID(ctx, accountID); err == nil {
		return apperrors.Conflict("Doctor profile already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check doctor profile: %w", err)
	}

	if _, err := s.doctors.GetByEmail(ctx, email); err == nil {
		return apperrors.Conflict("Doctor with this email already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check doctor email: %w", err)
	}
	return nil
}

// GetByUserID returns the caller's own profile in any status.
func (s *Service) GetByUserID(ctx context.Context, accountID uuid.UUID) (*model.DoctorProfile, error) {
	doctor, err := s.doctors.GetByUserID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return doctor, nil
}

// UpdateOwn applies the non-nil fields of req to the caller's profile.
func (s *Service) UpdateOwn(ctx context.Context, accountID uuid.UUID, req *model.UpdateDoctorRequest) (*model.DoctorProfile, error) {
	doctor, err := s.GetByUserID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		doctor.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		doctor.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.Website != nil {
		doctor.Website = *req.Website
	}
	if req.Address != nil {
		doctor.Address = *req.Address
	}
	if req.Specialization != nil {
		doctor.Specialization = req.Specialization
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.FeesPerConsultation != nil {
		doctor.FeesPerConsultation = *req.FeesPerConsultation
	}
	if req.Timings != nil {
		doctor.Timings = req.Timings
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != doctor.Email {
			other, err := s.doctors.GetByEmail(ctx, email)
			if err == nil && other.ID != doctor.ID {
				return nil, apperrors.Conflict("Doctor with this email already exists", nil)
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("failed to check doctor email: %w", err)
			}
			doctor.Email = email
		}
	}

	if err := s.doctors.Update(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Doctor with this email already exists", err)
		}
		return nil, fmt.Errorf("failed to update doctor profile: %w", err)
	}

	if doctor.Approved() {
		s.cache.Delete(approvedCacheKey)
	}
	return doctor, nil
}

// ListApproved returns the public view of approved doctors, served from a
// short-lived cache.
func (s *Service) ListApproved(ctx context.Context) ([]model.PublicDoctor, error) {
	if cached, ok := s.cache.Get(approvedCacheKey); ok {
		return cached.([]model.PublicDoctor), nil
	}

	doctors, err := s.doctors.List(ctx, &model.DoctorFilters{Status: model.DoctorStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list approved doctors: %w", err)
	}

	public := make([]model.PublicDoctor, 0, len(doctors))
	for _, d := range doctors {
		public = append(public, d.Public())
	}
	s.cache.SetDefault(approvedCacheKey, public)
	return public, nil
}

func (s *Service) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error) {
	doctors, err := s.doctors.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// ChangeStatus applies an admin decision to a pending profile. Rejection
// deletes the profile; approval promotes the owning account.
func (s *Service) ChangeStatus(ctx context.Context, doctorID uuid.UUID, status string) (*model.DoctorProfile, error) {
	decision, ok := model.ParseDecision(status)
	if !ok {
		return nil, apperrors.Validation("validation failed", []apperrors.FieldError{
			{Field: "status", Message: "must be one of approved rejected"},
		})
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	if doctor.Approved() {
		return nil, apperrors.Conflict("Doctor has been approved already", nil)
	}

	switch decision {
	case model.DecisionRejected:
		return s.reject(ctx, doctor)
	default:
		return s.approve(ctx, doctor)
	}
}

func (s *Service) reject(ctx context.Context, doctor *model.DoctorProfile) (*model.DoctorProfile, error) {
	if err := s.doctors.Delete(ctx, doctor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to delete doctor profile: %w", err)
	}
	s.countDecision(model.DecisionRejected)

	s.notifier.Notify(ctx, doctor.UserID, model.Notification{
		Type:        model.NotificationDoctorRejected,
		Message:     "Your doctor account has been rejected.",
		OnClickPath: "/notification",
	})
	s.notifier.Email(ctx, doctor.Email,
		"Doctor account request rejected",
		fmt.Sprintf("Hello Dr. %s %s,\n\nYour doctor account request has been rejected.", doctor.FirstName, doctor.LastName))

	return doctor, nil
}

func (s *Service) approve(ctx context.Context, doctor *model.DoctorProfile) (*model.DoctorProfile, error) {
	approved, err := s.doctors.Approve(ctx, doctor.ID)
	switch {
	case errors.Is(err, repository.ErrStaleState):
		return nil, apperrors.Conflict("Doctor has been approved already", err)
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("user", err)
	case err != nil:
		return nil, fmt.Errorf("failed to approve doctor: %w", err)
	}
	s.countDecision(model.DecisionApproved)
	s.cache.Delete(approvedCacheKey)

	s.notifier.Notify(ctx, approved.UserID, model.Notification{
		Type:        model.NotificationDoctorApproved,
		Message:     "Your doctor account has been approved.",
		OnClickPath: "/notification",
	})
	s.notifier.Email(ctx, approved.Email,
		"Doctor account request approved",
		fmt.Sprintf("Hello Dr. %s %s,\n\nYour doctor account request has been approved.", approved.FirstName, approved.LastName))

	return approved, nil
}

func (s *Service) countDecision(d model.DoctorDecision) {
	if s.metrics != nil {
		s.metrics.DoctorDecisions.WithLabelValues(string(d)).Inc()
	}
}
