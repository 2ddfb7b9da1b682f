package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type DoctorStatus string

const (
	DoctorStatusPending  DoctorStatus = "pending"
	DoctorStatusApproved DoctorStatus = "approved"
)

// DoctorDecision is an admin verdict on a pending profile.
type DoctorDecision string

const (
	DecisionApproved DoctorDecision = "approved"
	DecisionRejected DoctorDecision = "rejected"
)

// ParseDecision accepts the verb and participle forms.
func ParseDecision(s string) (DoctorDecision, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve":
		return DecisionApproved, true
	case "rejected", "reject":
		return DecisionRejected, true
	}
	return "", false
}

// Specialization is a set of tags. On input a bare string is accepted as a
// one-element set.
type Specialization []string

func (s *Specialization) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = Specialization{}
		} else {
			*s = Specialization{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

func (s Specialization) Value() (driver.Value, error) {
	return pq.StringArray(s).Value()
}

func (s *Specialization) Scan(src interface{}) error {
	return (*pq.StringArray)(s).Scan(src)
}

type DoctorProfile struct {
	Base
	UserID              uuid.UUID      `json:"userId" db:"user_id"`
	FirstName           string         `json:"firstName" db:"first_name"`
	LastName            string         `json:"lastName" db:"last_name"`
	Phone               string         `json:"phone" db:"phone"`
	Email               string         `json:"email" db:"email"`
	Website             string         `json:"website" db:"website"`
	Address             string         `json:"address" db:"address"`
	Specialization      Specialization `json:"specialization" db:"specialization"`
	Experience          string         `json:"experience" db:"experience"`
	FeesPerConsultation float64        `json:"feesPerConsultation" db:"fees_per_consultation"`
	Status              DoctorStatus   `json:"status" db:"status"`
	Timings             JSONMap        `json:"timings" db:"timings"`
}

func (d *DoctorProfile) Approved() bool {
	return d.Status == DoctorStatusApproved
}

// PublicDoctor is the restricted view exposed on the public listing.
type PublicDoctor struct {
	ID                  uuid.UUID      `json:"id"`
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Website             string         `json:"website,omitempty"`
	Address             string         `json:"address"`
	Specialization      Specialization `json:"specialization"`
	Experience          string         `json:"experience"`
	FeesPerConsultation float64        `json:"feesPerConsultation"`
	Timings             JSONMap        `json:"timings"`
}

func (d *DoctorProfile) Public() PublicDoctor {
	return PublicDoctor{
		ID:                  d.ID,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Website:             d.Website,
		Address:             d.Address,
		Specialization:      d.Specialization,
		Experience:          d.Experience,
		FeesPerConsultation: d.FeesPerConsultation,
		Timings:             d.Timings,
	}
}

type DoctorFilters struct {
	Status DoctorStatus
}

type ApplyDoctorRequest struct {
	FirstName           string         `json:"firstName" binding:"required"`
	LastName            string         `json:"lastName" binding:"required"`
	Phone               string         `json:"phone" binding:"required,phone"`
	Email               string         `json:"email" binding:"required,email"`
	Website             string         `json:"website" binding:"omitempty,url"`
	Address             string         `json:"address" binding:"required"`
	Specialization      Specialization `json:"specialization" binding:"required,min=1,dive,required"`
	Experience          string         `json:"experience" binding:"required"`
	FeesPerConsultation float64        `json:"feesPerConsultation" binding:"required,gt=0"`
	Timings             JSONMap        `json:"timings" binding:"required"`
}

// UpdateDoctorRequest leaves nil fields unchanged. Status is not writable.
type UpdateDoctorRequest struct {
	FirstName           *string        `json:"firstName" binding:"omitempty,min=1"`
	LastName            *string        `json:"lastName" binding:"omitempty,min=1"`
	Phone               *string        `json:"phone" binding:"omitempty,phone"`
	Email               *string        `json:"email" binding:"omitempty,email"`
	Website             *string        `json:"website" binding:"omitempty,url"`
	Address             *string        `json:"address" binding:"omitempty,min=1"`
	Specialization      Specialization `json:"specialization" binding:"omitempty,min=1,dive,required"`
	Experience          *string        `json:"experience" binding:"omitempty,min=1"`
	FeesPerConsultation *float64       `json:"feesPerConsultation" binding:"omitempty,gt=0"`
	Timings             JSONMap        `json:"timings"`
}

type ChangeStatusRequest struct {
	DoctorID string `json:"doctorId" binding:"required,uuid"`
	Status   string `json:"status" binding:"required"`
}
