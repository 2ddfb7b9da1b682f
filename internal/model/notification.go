package model

import (
	"database/sql/driver"
	"time"
)

// MaxNotificationMessageLen bounds the stored message, counted in characters.
const MaxNotificationMessageLen = 255

const (
	NotificationAppointmentRequest  = "appointment-request"
	NotificationAppointmentAccepted = "appointment-accepted"
	NotificationAppointmentRejected = "appointment-rejected"
	NotificationApplyDoctor         = "apply-doctor-request"
	NotificationDoctorApproved      = "doctor-account-request-approved"
	NotificationDoctorRejected      = "doctor-account-request-rejected"
	NotificationReportUploaded      = "medical-report-uploaded"
)

type Notification struct {
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	OnClickPath string    `json:"onClickPath"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NotificationList is an ordered JSONB array of notifications.
type NotificationList []Notification

func (l NotificationList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return jsonValue(l)
}

func (l *NotificationList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type NotificationsView struct {
	Unseen NotificationList `json:"notifications"`
	Seen   NotificationList `json:"seenNotifications"`
}

// TruncateMessage cuts msg to MaxNotificationMessageLen characters.
func TruncateMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxNotificationMessageLen {
		return msg
	}
	return string(runes[:MaxNotificationMessageLen])
}
