package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

const doctorColumns = `
	id, user_id, first_name, last_name, phone, email, website, address,
	specialization, experience, fees_per_consultation, status, timings,
	created_at, updated_at`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.DoctorProfile) error {
	query := `
		INSERT INTO doctors (
			id, user_id, first_name, last_name, phone, email, website, address,
			specialization, experience, fees_per_consultation, status, timings,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	now := time.Now().UTC()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.UserID,
		doctor.FirstName,
		doctor.LastName,
		doctor.Phone,
		doctor.Email,
		doctor.Website,
		doctor.Address,
		doctor.Specialization,
		doctor.Experience,
		doctor.FeesPerConsultation,
		doctor.Status,
		doctor.Timings,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	return mapError("create doctor", err)
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	return r.getBy(ctx, "id", id)
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.DoctorProfile, error) {
	return r.getBy(ctx, "email", email)
}

func (r *doctorRepository) getBy(ctx context.Context, column string, value interface{}) (*model.DoctorProfile, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE ` + column + ` = $1`

	var doctor model.DoctorProfile
	if err := r.db.GetContext(ctx, &doctor, query, value); err != nil {
		return nil, mapError("get doctor by "+column, err)
	}
	return &doctor, nil
}

// Update writes profile fields; status changes go through Approve.
func (r *doctorRepository) Update(ctx context.Context, doctor *model.DoctorProfile) error {
	query := `
		UPDATE doctors SET
			first_name = $1,
			last_name = $2,
			phone = $3,
			email = $4,
			website = $5,
			address = $6,
			specialization = $7,
			experience = $8,
			fees_per_consultation = $9,
			timings = $10,
			updated_at = $11
		WHERE id = $12
	`

	doctor.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		doctor.FirstName,
		doctor.LastName,
		doctor.Phone,
		doctor.Email,
		doctor.Website,
		doctor.Address,
		doctor.Specialization,
		doctor.Experience,
		doctor.FeesPerConsultation,
		doctor.Timings,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return mapError("update doctor", err)
	}
	return expectOneRow("update doctor", result)
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return mapError("delete doctor", err)
	}
	return expectOneRow("delete doctor", result)
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE 1=1`
	args := []interface{}{}

	if filters != nil && filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at DESC"

	doctors := []*model.DoctorProfile{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, mapError("list doctors", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Approve(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	var doctor model.DoctorProfile

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		approve := `
			UPDATE doctors SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
			RETURNING ` + doctorColumns
		err := tx.GetContext(ctx, &doctor, approve,
			model.DoctorStatusApproved, now, id, model.DoctorStatusPending)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("approve doctor: %w", repository.ErrStaleState)
		}
		if err != nil {
			return mapError("approve doctor", err)
		}

		// Admins keep their role; everyone else becomes a doctor.
		promote := `
			UPDATE users SET
				role = CASE WHEN role = $1 THEN role ELSE $2 END,
				is_doctor = TRUE,
				updated_at = $3
			WHERE id = $4
		`
		result, err := tx.ExecContext(ctx, promote, model.RoleAdmin, model.RoleDoctor, now, doctor.UserID)
		if err != nil {
			return mapError("promote account", err)
		}
		return expectOneRow("promote account", result)
	})
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}
