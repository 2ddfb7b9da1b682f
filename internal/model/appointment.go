package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "pending"
	AppointmentStatusAccepted AppointmentStatus = "accepted"
	AppointmentStatusRejected AppointmentStatus = "rejected"
)

// RequesterSnapshot freezes the requester's display fields at booking time.
type RequesterSnapshot struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	MedicalHistory JSONMap `json:"medicalHistory,omitempty"`
}

func NewRequesterSnapshot(a *Account) RequesterSnapshot {
	return RequesterSnapshot{
		Name:           a.Name,
		Email:          a.Email,
		MedicalHistory: a.MedicalHistory,
	}
}

func (s RequesterSnapshot) Value() (driver.Value, error) {
	return jsonValue(s)
}

func (s *RequesterSnapshot) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// DoctorSnapshot freezes the doctor's display fields at booking time.
type DoctorSnapshot struct {
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Website             string         `json:"website,omitempty"`
	Address             string         `json:"address"`
	Specialization      Specialization `json:"specialization"`
	Experience          string         `json:"experience"`
	FeesPerConsultation float64        `json:"feesPerConsultation"`
	Timings             JSONMap        `json:"timings,omitempty"`
}

func NewDoctorSnapshot(d *DoctorProfile) DoctorSnapshot {
	spec := make(Specialization, len(d.Specialization))
	copy(spec, d.Specialization)
	return DoctorSnapshot{
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Website:             d.Website,
		Address:             d.Address,
		Specialization:      spec,
		Experience:          d.Experience,
		FeesPerConsultation: d.FeesPerConsultation,
		Timings:             d.Timings,
	}
}

func (s DoctorSnapshot) Value() (driver.Value, error) {
	return jsonValue(s)
}

func (s *DoctorSnapshot) Scan(src interface{}) error {
	return scanJSON(src, s)
}

type Appointment struct {
	Base
	UserID     uuid.UUID         `json:"userId" db:"user_id"`
	DoctorID   uuid.UUID         `json:"doctorId" db:"doctor_id"`
	UserInfo   RequesterSnapshot `json:"userInfo" db:"user_info"`
	DoctorInfo DoctorSnapshot    `json:"doctorInfo" db:"doctor_info"`
	TestTypes  pq.StringArray    `json:"testTypes" db:"test_types"`
	Date       time.Time         `json:"date" db:"appointment_date"`
	Time       time.Time         `json:"time" db:"appointment_time"`
	Status     AppointmentStatus `json:"status" db:"status"`
}

type BookAppointmentRequest struct {
	DoctorID  string    `json:"doctorId" binding:"required,uuid"`
	TestTypes []string  `json:"testTypes" binding:"required,min=1,dive,required"`
	Date      Timestamp `json:"date" binding:"required"`
	Time      Timestamp `json:"time" binding:"required"`
}

type AvailabilityRequest struct {
	DoctorID string    `json:"doctorId" binding:"required,uuid"`
	Date     Timestamp `json:"date" binding:"required"`
	Time     Timestamp `json:"time" binding:"required"`
}

type Availability struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type AppointmentDecisionRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required,uuid"`
}

// CalendarDay truncates t to midnight UTC of its UTC calendar day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
