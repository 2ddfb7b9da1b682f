package model

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// Account is any registered identity: patient, doctor or admin.
type Account struct {
	Base
	Name              string           `json:"name" db:"name"`
	Email             string           `json:"email" db:"email"`
	PasswordHash      string           `json:"-" db:"password_hash"`
	Address           string           `json:"address" db:"address"`
	MedicalHistory    JSONMap          `json:"medicalHistory" db:"medical_history"`
	Role              Role             `json:"role" db:"role"`
	Notifications     NotificationList `json:"notifications" db:"notifications"`
	SeenNotifications NotificationList `json:"seenNotifications" db:"seen_notifications"`
	IsDoctor          bool             `json:"isDoctor" db:"is_doctor"`
	IsAdmin           bool             `json:"isAdmin" db:"is_admin"`
}

type AccountFilters struct {
	Role Role
}

type RegisterRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=6"`
	Address        string  `json:"address"`
	MedicalHistory JSONMap `json:"medicalHistory"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   *Account  `json:"user"`
}

// UpdateAccountRequest leaves nil fields unchanged.
type UpdateAccountRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Password       *string `json:"password" binding:"omitempty,min=6"`
	Address        *string `json:"address"`
	MedicalHistory JSONMap `json:"medicalHistory"`
}
