// Package mocks holds testify mocks for the repository and collaborator
// interfaces shared by the service and handler tests.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/booking-api/internal/model"
)

// AccountRepository is a mock implementation of repository.AccountRepository
type AccountRepository struct {
	mock.Mock
}

func (m *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *AccountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *AccountRepository) Update(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *AccountRepository) List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Account), args.Error(1)
}

func (m *AccountRepository) AppendNotification(ctx context.Context, id uuid.UUID, notification model.Notification) error {
	args := m.Called(ctx, id, notification)
	return args.Error(0)
}

func (m *AccountRepository) MarkNotificationsSeen(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AccountRepository) ClearSeenNotifications(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DoctorRepository is a mock implementation of repository.DoctorRepository
type DoctorRepository struct {
	mock.Mock
}

func (m *DoctorRepository) Create(ctx context.Context, doctor *model.DoctorProfile) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *DoctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DoctorProfile), args.Error(1)
}

func (m *DoctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DoctorProfile), args.Error(1)
}

func (m *DoctorRepository) GetByEmail(ctx context.Context, email string) (*model.DoctorProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DoctorProfile), args.Error(1)
}

func (m *DoctorRepository) Update(ctx context.Context, doctor *model.DoctorProfile) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *DoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DoctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DoctorProfile), args.Error(1)
}

func (m *DoctorRepository) Approve(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DoctorProfile), args.Error(1)
}

// AppointmentRepository is a mock implementation of repository.AppointmentRepository
type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	args := m.Called(ctx, apt)
	return args.Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *AppointmentRepository) DeletePending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AppointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

func (m *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

func (m *AppointmentRepository) CountInWindow(ctx context.Context, doctorID uuid.UUID, day, from, to time.Time) (int, error) {
	args := m.Called(ctx, doctorID, day, from, to)
	return args.Int(0), args.Error(1)
}

// MedicalRecordRepository is a mock implementation of repository.MedicalRecordRepository
type MedicalRecordRepository struct {
	mock.Mock
}

func (m *MedicalRecordRepository) AppendRecords(ctx context.Context, doctorID, patientID string, entries []model.RecordEntry) (*model.MedicalRecordBucket, error) {
	args := m.Called(ctx, doctorID, patientID, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicalRecordBucket), args.Error(1)
}

func (m *MedicalRecordRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.MedicalRecordBucket, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MedicalRecordBucket), args.Error(1)
}

// Notifier is a mock implementation of notification.Notifier
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, accountID uuid.UUID, n model.Notification) {
	m.Called(ctx, accountID, n)
}

func (m *Notifier) NotifyAdmins(ctx context.Context, n model.Notification) {
	m.Called(ctx, n)
}

func (m *Notifier) Email(ctx context.Context, to, subject, body string) {
	m.Called(ctx, to, subject, body)
}

// EmailSender is a mock implementation of email.Sender
type EmailSender struct {
	mock.Mock
}

func (m *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// Publisher is a mock implementation of messaging.Publisher
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

// FileStore is a mock implementation of storage.FileStore
type FileStore struct {
	mock.Mock
}

func (m *FileStore) Save(ctx context.Context, originalName string, content io.Reader) (*model.UploadedFile, error) {
	args := m.Called(ctx, originalName, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadedFile), args.Error(1)
}

func (m *FileStore) Remove(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}
