package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RecordEntry references one uploaded report.
type RecordEntry struct {
	Path          string    `json:"path" bson:"path"`
	OriginalName  string    `json:"originalName" bson:"original_name"`
	AppointmentID string    `json:"appointmentId" bson:"appointment_id"`
	UploadedAt    time.Time `json:"uploadedAt" bson:"uploaded_at"`
}

// MedicalRecordBucket accumulates reports for one doctor-patient pair.
type MedicalRecordBucket struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	DoctorID  string        `json:"doctorId" bson:"doctor_id"`
	PatientID string        `json:"patientId" bson:"patient_id"`
	Records   []RecordEntry `json:"records" bson:"records"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updated_at"`
}

// UploadedFile is a file already persisted by the upload store.
type UploadedFile struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}
