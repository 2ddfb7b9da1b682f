package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var doctorRowColumns = []string{
	"id", "user_id", "first_name", "last_name", "phone", "email", "website", "address",
	"specialization", "experience", "fees_per_consultation", "status", "timings",
	"created_at", "updated_at",
}

func doctorRow(id, userID uuid.UUID, status model.DoctorStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(doctorRowColumns).AddRow(
		id.String(), userID.String(), "Ada", "Lovelace", "5551234567", "ada@clinic.test", "",
		"1 Main St", "{cardiology,surgery}", "10 years", 150.0, string(status),
		`{"start":"09:00","end":"17:00"}`, now, now,
	)
}

func TestAccountRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &model.Account{Name: "Bob", Email: "bob@x.test"})
	assert.True(t, errors.Is(err, repository.ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CreateAssignsIDAndEmptyLists(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &model.Account{Name: "Bob", Email: "bob@x.test", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), account))

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.NotNil(t, account.Notifications)
	assert.NotNil(t, account.SeenNotifications)
	assert.False(t, account.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestAccountRepository_GetScansJSONColumns(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)
	id := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "address", "medical_history", "role",
		"notifications", "seen_notifications", "is_doctor", "is_admin", "created_at", "updated_at",
	}).AddRow(
		id.String(), "Bob", "bob@x.test", "hash", "", `{"allergies":"none"}`, "user",
		`[{"type":"appointment-accepted","message":"ok","onClickPath":"/user/appointments"}]`,
		`[]`, false, false, now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(rows)

	account, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, account.ID)
	assert.Equal(t, "none", account.MedicalHistory["allergies"])
	require.Len(t, account.Notifications, 1)
	assert.Equal(t, model.NotificationAppointmentAccepted, account.Notifications[0].Type)
	assert.Empty(t, account.SeenNotifications)
}

func TestAccountRepository_AppendNotificationIsAtomic(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)
	id := uuid.New()

	mock.ExpectExec("SET notifications = notifications \\|\\| \\$1::jsonb").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendNotification(context.Background(), id, model.Notification{
		Type:    model.NotificationAppointmentRequest,
		Message: "hello",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_AppendNotificationUnknownAccount(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AppendNotification(context.Background(), uuid.New(), model.Notification{Message: "x"})
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestAccountRepository_MarkNotificationsSeen(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)
	id := uuid.New()

	mock.ExpectExec("SET seen_notifications = seen_notifications \\|\\| notifications").
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkNotificationsSeen(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ListFiltersByRole(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE 1=1 AND role = \\$1").
		WithArgs(model.RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	accounts, err := repo.List(context.Background(), &model.AccountFilters{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.NotNil(t, accounts)
}

func TestDoctorRepository_GetByUserID(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDoctorRepository(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM doctors WHERE user_id = \\$1").
		WithArgs(userID).
		WillReturnRows(doctorRow(id, userID, model.DoctorStatusPending))

	doctor, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, id, doctor.ID)
	assert.Equal(t, model.Specialization{"cardiology", "surgery"}, doctor.Specialization)
	assert.Equal(t, "09:00", doctor.Timings["start"])
	assert.False(t, doctor.Approved())
}

func TestDoctorRepository_Approve(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDoctorRepository(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE doctors SET status = \\$1").
		WithArgs(model.DoctorStatusApproved, sqlmock.AnyArg(), id, model.DoctorStatusPending).
		WillReturnRows(doctorRow(id, userID, model.DoctorStatusApproved))
	mock.ExpectExec("UPDATE users SET").
		WithArgs(model.RoleAdmin, model.RoleDoctor, sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doctor, err := repo.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, doctor.Approved())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepository_ApproveAlreadyDecided(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDoctorRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE doctors SET status = \\$1").
		WillReturnRows(sqlmock.NewRows(doctorRowColumns))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, repository.ErrStaleState))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepository_ApproveMissingAccountRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDoctorRepository(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE doctors SET status = \\$1").
		WillReturnRows(doctorRow(id, userID, model.DoctorStatusApproved))
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), id)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepository_DeleteMissing(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDoctorRepository(db)

	mock.ExpectExec("DELETE FROM doctors WHERE id = \\$1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestAppointmentRepository_DeletePending(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAppointmentRepository(db)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM appointments WHERE id = \\$1 AND status = \\$2").
		WithArgs(id, model.AppointmentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeletePending(context.Background(), id))

	mock.ExpectExec("DELETE FROM appointments WHERE id = \\$1 AND status = \\$2").
		WithArgs(id, model.AppointmentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.DeletePending(context.Background(), id)
	assert.True(t, errors.Is(err, repository.ErrStaleState))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_CreateSlotTaken(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "appointments_doctor_slot_key"})

	err := repo.Create(context.Background(), &model.Appointment{
		UserID:   uuid.New(),
		DoctorID: uuid.New(),
		Status:   model.AppointmentStatusPending,
	})
	assert.True(t, errors.Is(err, repository.ErrDuplicate))
}

func TestAppointmentRepository_UpdateStatusConditional(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAppointmentRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointments SET status = \\$1").
		WithArgs(model.AppointmentStatusAccepted, sqlmock.AnyArg(), id, model.AppointmentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE appointments SET status = \\$1").
		WithArgs(model.AppointmentStatusAccepted, sqlmock.AnyArg(), id, model.AppointmentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.UpdateStatus(ctx, id, model.AppointmentStatusPending, model.AppointmentStatusAccepted))

	err := repo.UpdateStatus(ctx, id, model.AppointmentStatusPending, model.AppointmentStatusAccepted)
	assert.True(t, errors.Is(err, repository.ErrStaleState))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_CountInWindow(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAppointmentRepository(db)
	doctorID := uuid.New()
	slot := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	day := model.CalendarDay(slot)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM appointments").
		WithArgs(doctorID, day, slot.Add(-time.Hour), slot.Add(time.Hour), model.AppointmentStatusRejected).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountInWindow(context.Background(), doctorID, day, slot.Add(-time.Hour), slot.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
