package doctor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/mocks"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

// memStore backs both account and doctor repositories so that approval can
// promote the owning account the way the postgres transaction does.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]model.Account
	doctors  map[uuid.UUID]model.DoctorProfile
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[uuid.UUID]model.Account{},
		doctors:  map[uuid.UUID]model.DoctorProfile{},
	}
}

type memAccounts struct{ *memStore }

func (m memAccounts) Create(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.accounts {
		if row.Email == a.Email {
			return fmt.Errorf("create account: %w", repository.ErrDuplicate)
		}
	}
	a.ID = uuid.New()
	m.accounts[a.ID] = *a
	return nil
}

func (m memAccounts) Get(_ context.Context, id uuid.UUID) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("get account: %w", repository.ErrNotFound)
	}
	return &row, nil
}

func (m memAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.accounts {
		if row.Email == email {
			r := row
			return &r, nil
		}
	}
	return nil, fmt.Errorf("get account: %w", repository.ErrNotFound)
}

func (m memAccounts) Update(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = *a
	return nil
}

func (m memAccounts) List(context.Context, *model.AccountFilters) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Account{}
	for _, row := range m.accounts {
		r := row
		out = append(out, &r)
	}
	return out, nil
}

func (m memAccounts) AppendNotification(context.Context, uuid.UUID, model.Notification) error {
	return nil
}

func (m memAccounts) MarkNotificationsSeen(context.Context, uuid.UUID) error { return nil }

func (m memAccounts) ClearSeenNotifications(context.Context, uuid.UUID) error { return nil }

type memDoctors struct{ *memStore }

func (m memDoctors) Create(_ context.Context, d *model.DoctorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.doctors {
		if row.UserID == d.UserID || row.Email == d.Email {
			return fmt.Errorf("create doctor: %w", repository.ErrDuplicate)
		}
	}
	d.ID = uuid.New()
	m.doctors[d.ID] = *d
	return nil
}

func (m memDoctors) Get(_ context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.doctors[id]
	if !ok {
		return nil, fmt.Errorf("get doctor: %w", repository.ErrNotFound)
	}
	return &row, nil
}

func (m memDoctors) find(keep func(model.DoctorProfile) bool) (*model.DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.doctors {
		if keep(row) {
			r := row
			return &r, nil
		}
	}
	return nil, fmt.Errorf("get doctor: %w", repository.ErrNotFound)
}

func (m memDoctors) GetByUserID(_ context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	return m.find(func(d model.DoctorProfile) bool { return d.UserID == userID })
}

func (m memDoctors) GetByEmail(_ context.Context, email string) (*model.DoctorProfile, error) {
	return m.find(func(d model.DoctorProfile) bool { return d.Email == email })
}

func (m memDoctors) Update(_ context.Context, d *model.DoctorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doctors[d.ID] = *d
	return nil
}

func (m memDoctors) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[id]; !ok {
		return fmt.Errorf("delete doctor: %w", repository.ErrNotFound)
	}
	delete(m.doctors, id)
	return nil
}

func (m memDoctors) List(_ context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.DoctorProfile{}
	for _, row := range m.doctors {
		if filters == nil || filters.Status == "" || row.Status == filters.Status {
			r := row
			out = append(out, &r)
		}
	}
	return out, nil
}

func (m memDoctors) Approve(_ context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.doctors[id]
	if !ok || row.Status != model.DoctorStatusPending {
		return nil, fmt.Errorf("approve doctor: %w", repository.ErrStaleState)
	}
	account, ok := m.accounts[row.UserID]
	if !ok {
		return nil, fmt.Errorf("promote account: %w", repository.ErrNotFound)
	}
	row.Status = model.DoctorStatusApproved
	account.Role = model.RoleDoctor
	account.IsDoctor = true
	m.doctors[id] = row
	m.accounts[account.ID] = account
	return &row, nil
}

func TestRegisterApplyApprove_PromotesAndKeepsEmailTaken(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	accounts, doctors := memAccounts{store}, memDoctors{store}

	notifier := &mocks.Notifier{}
	notifier.On("NotifyAdmins", mock.Anything, mock.Anything).Return()
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return()
	notifier.On("Email", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	users := authService.NewService(accounts, auth.NewJWTService("scenario-secret", time.Hour), security.NewBcryptHasher(4))
	svc := NewService(doctors, accounts, notifier, metrics.NewMetrics(prometheus.NewRegistry(), "test"))

	registered, err := users.Register(ctx, &model.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, registered.Role)

	profile, err := svc.Apply(ctx, registered.ID, applyRequest())
	require.NoError(t, err)
	assert.Equal(t, model.DoctorStatusPending, profile.Status)

	approved, err := svc.ChangeStatus(ctx, profile.ID, "approved")
	require.NoError(t, err)
	assert.True(t, approved.Approved())

	promoted, err := accounts.Get(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, promoted.Role)
	assert.True(t, promoted.IsDoctor)

	login, err := users.Login(ctx, &model.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, login.Account.Role)

	_, err = users.Register(ctx, &model.RegisterRequest{Name: "Impostor", Email: "A@x.com", Password: "secret2"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	all, err := accounts.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.ChangeStatus(ctx, profile.ID, "approved")
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}
