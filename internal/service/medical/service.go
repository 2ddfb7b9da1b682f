package medical

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	"github.com/jwalitptl/booking-api/internal/storage"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

const DefaultMaxFiles = 3

type Service struct {
	records      repository.MedicalRecordRepository
	appointments repository.AppointmentRepository
	store        storage.FileStore
	notifier     notification.Notifier
	metrics      *metrics.Metrics
	maxFiles     int
	now          func() time.Time
}

func NewService(records repository.MedicalRecordRepository, appointments repository.AppointmentRepository,
	store storage.FileStore, notifier notification.Notifier, m *metrics.Metrics, maxFiles int) *Service {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Service{
		records:      records,
		appointments: appointments,
		store:        store,
		notifier:     notifier,
		metrics:      m,
		maxFiles:     maxFiles,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// UploadReports stores files for an appointment of doctor and appends them,
// in order, to the bucket of that doctor and the appointment's requester.
func (s *Service) UploadReports(ctx context.Context, doctor *model.DoctorProfile, appointmentID string, files []*multipart.FileHeader) (*model.MedicalRecordBucket, error) {
	if len(files) == 0 || len(files) > s.maxFiles {
		return nil, apperrors.Validation("validation failed", []apperrors.FieldError{
			{Field: "file", Message: fmt.Sprintf("between 1 and %d files are required", s.maxFiles)},
		})
	}

	id, err := uuid.Parse(appointmentID)
	if err != nil {
		return nil, apperrors.Validation("validation failed", []apperrors.FieldError{
			{Field: "appointmentId", Message: "must be a valid UUID"},
		})
	}

	apt, err := s.appointments.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.DoctorID != doctor.ID {
		return nil, apperrors.NotFound("appointment", nil)
	}

	saved, err := s.saveAll(ctx, files)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]model.RecordEntry, 0, len(saved))
	for _, f := range saved {
		entries = append(entries, model.RecordEntry{
			Path:          f.Path,
			OriginalName:  f.OriginalName,
			AppointmentID: apt.ID.String(),
			UploadedAt:    now,
		})
	}

	bucket, err := s.records.AppendRecords(ctx, doctor.ID.String(), apt.UserID.String(), entries)
	if err != nil {
		s.discard(ctx, saved)
		return nil, fmt.Errorf("failed to append medical records: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ReportsUploaded.Add(float64(len(entries)))
	}

	s.notifier.Notify(ctx, apt.UserID, model.Notification{
		Type: model.NotificationReportUploaded,
		Message: fmt.Sprintf("Dr. %s %s uploaded %d medical report(s) for your appointment on %s",
			apt.DoctorInfo.FirstName, apt.DoctorInfo.LastName, len(entries), apt.Date.Format("2006-01-02")),
		OnClickPath: "/user/medical-history",
	})

	return bucket, nil
}

func (s *Service) saveAll(ctx context.Context, files []*multipart.FileHeader) ([]*model.UploadedFile, error) {
	saved := make([]*model.UploadedFile, 0, len(files))
	for _, fh := range files {
		f, err := s.saveOne(ctx, fh)
		if err != nil {
			s.discard(ctx, saved)
			if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrMissingFileName) {
				return nil, apperrors.Validation("validation failed", []apperrors.FieldError{
					{Field: "file", Message: fmt.Sprintf("%s: %s", fh.Filename, err.Error())},
				})
			}
			return nil, fmt.Errorf("failed to store %s: %w", fh.Filename, err)
		}
		saved = append(saved, f)
	}
	return saved, nil
}

func (s *Service) saveOne(ctx context.Context, fh *multipart.FileHeader) (*model.UploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return s.store.Save(ctx, fh.Filename, src)
}

func (s *Service) discard(ctx context.Context, files []*model.UploadedFile) {
	for _, f := range files {
		if err := s.store.Remove(ctx, f.Path); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", f.Path).Msg("failed to remove orphaned upload")
		}
	}
}

// History returns every bucket of the patient across doctors.
func (s *Service) History(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecordBucket, error) {
	buckets, err := s.records.ListByPatient(ctx, patientID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get medical history: %w", err)
	}
	if len(buckets) == 0 {
		return nil, apperrors.NotFound("medical records", nil)
	}
	return buckets, nil
}
