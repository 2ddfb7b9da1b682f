package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

const accountColumns = `
	id, name, email, password_hash, address, medical_history, role,
	notifications, seen_notifications, is_doctor, is_admin, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, address, medical_history, role,
			notifications, seen_notifications, is_doctor, is_admin, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Notifications == nil {
		account.Notifications = model.NotificationList{}
	}
	if account.SeenNotifications == nil {
		account.SeenNotifications = model.NotificationList{}
	}

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Address,
		account.MedicalHistory,
		account.Role,
		account.Notifications,
		account.SeenNotifications,
		account.IsDoctor,
		account.IsAdmin,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return mapError("create account", err)
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, mapError("get account", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email = $1`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, mapError("get account by email", err)
	}
	return &account, nil
}

// Update writes the profile fields only; role and notifications have
// dedicated paths.
func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE users SET
			name = $1,
			email = $2,
			password_hash = $3,
			address = $4,
			medical_history = $5,
			updated_at = $6
		WHERE id = $7
	`

	account.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Address,
		account.MedicalHistory,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return mapError("update account", err)
	}
	return expectOneRow("update account", result)
}

func (r *accountRepository) List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}

	if filters != nil && filters.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, filters.Role)
	}

	query += " ORDER BY created_at DESC"

	accounts := []*model.Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, mapError("list accounts", err)
	}
	return accounts, nil
}

// AppendNotification appends in the database so concurrent appends are not
// lost to a read-modify-write.
func (r *accountRepository) AppendNotification(ctx context.Context, id uuid.UUID, notification model.Notification) error {
	query := `
		UPDATE users
		SET notifications = notifications || $1::jsonb, updated_at = $2
		WHERE id = $3
	`

	entry, err := json.Marshal([]model.Notification{notification})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, string(entry), time.Now().UTC(), id)
	if err != nil {
		return mapError("append notification", err)
	}
	return expectOneRow("append notification", result)
}

func (r *accountRepository) MarkNotificationsSeen(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET seen_notifications = seen_notifications || notifications,
			notifications = '[]'::jsonb,
			updated_at = $1
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError("mark notifications seen", err)
	}
	return expectOneRow("mark notifications seen", result)
}

func (r *accountRepository) ClearSeenNotifications(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET seen_notifications = '[]'::jsonb, updated_at = $1
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError("clear seen notifications", err)
	}
	return expectOneRow("clear seen notifications", result)
}
