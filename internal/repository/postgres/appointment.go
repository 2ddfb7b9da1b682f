package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

const appointmentColumns = `
	id, user_id, doctor_id, user_info, doctor_info, test_types,
	appointment_date, appointment_time, status, created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, doctor_id, user_info, doctor_info, test_types,
			appointment_date, appointment_time, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.UserID,
		apt.DoctorID,
		apt.UserInfo,
		apt.DoctorInfo,
		apt.TestTypes,
		apt.Date,
		apt.Time,
		apt.Status,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	return mapError("create appointment", err)
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, mapError("get appointment", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error {
	query := `
		UPDATE appointments SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return mapError("update appointment status", err)
	}
	if err := expectOneRow("update appointment status", result); err != nil {
		return fmt.Errorf("update appointment status: %w", repository.ErrStaleState)
	}
	return nil
}

func (r *appointmentRepository) DeletePending(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, model.AppointmentStatusPending)
	if err != nil {
		return mapError("delete pending appointment", err)
	}
	if err := expectOneRow("delete pending appointment", result); err != nil {
		return fmt.Errorf("delete pending appointment: %w", repository.ErrStaleState)
	}
	return nil
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	return r.list(ctx, "doctor_id", doctorID)
}

func (r *appointmentRepository) list(ctx context.Context, column string, id uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE ` + column + ` = $1
		ORDER BY appointment_time ASC`

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, id); err != nil {
		return nil, mapError("list appointments", err)
	}
	return appointments, nil
}

// CountInWindow counts live appointments of a doctor on day whose time lies
// in the closed interval [from, to].
func (r *appointmentRepository) CountInWindow(ctx context.Context, doctorID uuid.UUID, day, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1
			AND appointment_date = $2
			AND appointment_time BETWEEN $3 AND $4
			AND status <> $5
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, doctorID, day, from, to, model.AppointmentStatusRejected); err != nil {
		return 0, mapError("count appointments in window", err)
	}
	return count, nil
}
