package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleState means a conditional update found the row in another state.
	ErrStaleState = errors.New("record state changed")
)

// All repository interfaces in one file
type (
	// AccountRepository handles account operations
	AccountRepository interface {
		Create(ctx context.Context, account *model.Account) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		GetByEmail(ctx context.Context, email string) (*model.Account, error)
		Update(ctx context.Context, account *model.Account) error
		List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error)
		AppendNotification(ctx context.Context, id uuid.UUID, notification model.Notification) error
		MarkNotificationsSeen(ctx context.Context, id uuid.UUID) error
		ClearSeenNotifications(ctx context.Context, id uuid.UUID) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.DoctorProfile) error
		Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error)
		GetByEmail(ctx context.Context, email string) (*model.DoctorProfile, error)
		Update(ctx context.Context, doctor *model.DoctorProfile) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error)
		// Approve moves a pending profile to approved and promotes the owning
		// account in one transaction.
		Approve(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// UpdateStatus applies only when the row is still in status from.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error
		// DeletePending removes the row only while it is still pending.
		DeletePending(ctx context.Context, id uuid.UUID) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		CountInWindow(ctx context.Context, doctorID uuid.UUID, day, from, to time.Time) (int, error)
	}

	MedicalRecordRepository interface {
		// AppendRecords finds or creates the bucket for the pair and appends
		// entries in order.
		AppendRecords(ctx context.Context, doctorID, patientID string, entries []model.RecordEntry) (*model.MedicalRecordBucket, error)
		ListByPatient(ctx context.Context, patientID string) ([]*model.MedicalRecordBucket, error)
	}
)
