package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// ConflictWindow is the half-width of the advisory availability window.
const ConflictWindow = time.Hour

const (
	msgNotAvailable = "Appointments not available at this time"
	msgAvailable    = "Appointments available"
)

type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	accounts     repository.AccountRepository
	notifier     notification.Notifier
	metrics      *metrics.Metrics
}

func NewService(appointments repository.AppointmentRepository, doctors repository.DoctorRepository,
	accounts repository.AccountRepository, notifier notification.Notifier, m *metrics.Metrics) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		accounts:     accounts,
		notifier:     notifier,
		metrics:      m,
	}
}

// Book creates a pending appointment carrying frozen copies of the requester
// and doctor display fields, then notifies the doctor's account.
func (s *Service) Book(ctx context.Context, requesterID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	doctorID, err := parseID("doctorId", req.DoctorID)
	if err != nil {
		return nil, err
	}

	requester, err := s.accounts.Get(ctx, requesterID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}

	doctor, err := s.approvedDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		UserID:     requester.ID,
		DoctorID:   doctor.ID,
		UserInfo:   model.NewRequesterSnapshot(requester),
		DoctorInfo: model.NewDoctorSnapshot(doctor),
		TestTypes:  append([]string(nil), req.TestTypes...),
		Date:       model.CalendarDay(req.Date.Time()),
		Time:       req.Time.Time().UTC(),
		Status:     model.AppointmentStatusPending,
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Appointment slot already booked", err)
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AppointmentsBooked.Inc()
	}

	s.notifier.Notify(ctx, doctor.UserID, model.Notification{
		Type: model.NotificationAppointmentRequest,
		Message: fmt.Sprintf("A new appointment request from %s with this medical history: %s",
			requester.Name, historyText(requester.MedicalHistory)),
		OnClickPath: "/user/book-appointment-with-doctor",
	})

	return apt, nil
}

// CheckAvailability reports whether the doctor has no live appointment within
// ConflictWindow of the requested time on that day. It does not reserve.
func (s *Service) CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.Availability, error) {
	doctorID, err := parseID("doctorId", req.DoctorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.approvedDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	slot := req.Time.Time().UTC()
	count, err := s.appointments.CountInWindow(ctx, doctorID, model.CalendarDay(req.Date.Time()),
		slot.Add(-ConflictWindow), slot.Add(ConflictWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}

	if count > 0 {
		return &model.Availability{Available: false, Message: msgNotAvailable}, nil
	}
	return &model.Availability{Available: true, Message: msgAvailable}, nil
}

// Accept moves a pending appointment owned by doctor to accepted.
func (s *Service) Accept(ctx context.Context, doctor *model.DoctorProfile, appointmentID string) (*model.Appointment, error) {
	apt, err := s.ownedPending(ctx, doctor, appointmentID)
	if err != nil {
		return nil, err
	}

	err = s.appointments.UpdateStatus(ctx, apt.ID, model.AppointmentStatusPending, model.AppointmentStatusAccepted)
	if errors.Is(err, repository.ErrStaleState) {
		return nil, apperrors.Conflict("Appointment is no longer pending", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept appointment: %w", err)
	}
	apt.Status = model.AppointmentStatusAccepted
	s.countDecision(model.AppointmentStatusAccepted)

	s.notifier.Notify(ctx, apt.UserID, model.Notification{
		Type: model.NotificationAppointmentAccepted,
		Message: fmt.Sprintf("Your appointment with Dr. %s %s on %s has been accepted",
			apt.DoctorInfo.FirstName, apt.DoctorInfo.LastName, apt.Time.Format("2006-01-02 15:04")),
		OnClickPath: "/user/appointments",
	})

	return apt, nil
}

// Reject removes a pending appointment in one conditional delete, so a later
// lookup reports not found and a failed delete leaves it pending. The
// returned copy carries the rejected status.
func (s *Service) Reject(ctx context.Context, doctor *model.DoctorProfile, appointmentID string) (*model.Appointment, error) {
	apt, err := s.ownedPending(ctx, doctor, appointmentID)
	if err != nil {
		return nil, err
	}

	err = s.appointments.DeletePending(ctx, apt.ID)
	if errors.Is(err, repository.ErrStaleState) {
		return nil, apperrors.Conflict("Appointment is no longer pending", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject appointment: %w", err)
	}
	apt.Status = model.AppointmentStatusRejected
	s.countDecision(model.AppointmentStatusRejected)

	s.notifier.Notify(ctx, apt.UserID, model.Notification{
		Type: model.NotificationAppointmentRejected,
		Message: fmt.Sprintf("Your appointment with Dr. %s %s on %s has been rejected",
			apt.DoctorInfo.FirstName, apt.DoctorInfo.LastName, apt.Time.Format("2006-01-02 15:04")),
		OnClickPath: "/user/appointments",
	})

	return apt, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctor *model.DoctorProfile) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// GetOwned resolves an appointment by id that belongs to doctor. Appointments
// of other doctors are reported as not found.
func (s *Service) GetOwned(ctx context.Context, doctor *model.DoctorProfile, appointmentID string) (*model.Appointment, error) {
	id, err := parseID("appointmentId", appointmentID)
	if err != nil {
		return nil, err
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
	return apt, nil
}

func (s *Service) ownedPending(ctx context.Context, doctor *model.DoctorProfile, appointmentID string) (*model.Appointment, error) {
	id, err := parseID("appointmentId", appointmentID)
	if err != nil {
		return nil, err
	}

	apt, err := s.appointments.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.DoctorID != doctor.ID {
		return nil, apperrors.Forbidden("appointment belongs to another doctor", nil)
	}
	if apt.Status != model.AppointmentStatusPending {
		return nil, apperrors.Conflict("Appointment is no longer pending", nil)
	}
	return apt, nil
}

func (s *Service) approvedDoctor(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if !doctor.Approved() {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return doctor, nil
}

func (s *Service) countDecision(status model.AppointmentStatus) {
	if s.metrics != nil {
		s.metrics.AppointmentDecisions.WithLabelValues(string(status)).Inc()
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("validation failed", []apperrors.FieldError{
			{Field: field, Message: "must be a valid UUID"},
		})
	}
	return id, nil
}

func historyText(history model.JSONMap) string {
	if len(history) == 0 {
		return "none"
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "none"
	}
	return string(data)
}
