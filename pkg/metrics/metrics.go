package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Workflow metrics
	AppointmentsBooked   prometheus.Counter
	AppointmentDecisions *prometheus.CounterVec
	DoctorDecisions      *prometheus.CounterVec
	ReportsUploaded      prometheus.Counter

	// Notification sink
	Notifications *prometheus.CounterVec

	// Assistant proxy
	AssistantRequests *prometheus.CounterVec
	AssistantLatency  prometheus.Histogram

	// Database metrics
	DatabaseLatency *prometheus.HistogramVec
}

// NewMetrics creates all application metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AppointmentsBooked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "booked_total",
			Help:      "Total number of appointments booked",
		}),
		AppointmentDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "decisions_total",
			Help:      "Appointment accept/reject decisions taken by doctors",
		}, []string{"decision"}),
		DoctorDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "doctors",
			Name:      "decisions_total",
			Help:      "Doctor onboarding decisions taken by admins",
		}, []string{"decision"}),
		ReportsUploaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "medical_records",
			Name:      "reports_uploaded_total",
			Help:      "Total number of medical report files appended to buckets",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "total",
			Help:      "Notification deliveries by channel and outcome",
		}, []string{"channel", "outcome"}),
		AssistantRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "requests_total",
			Help:      "Assistant proxy requests by outcome",
		}, []string{"outcome"}),
		AssistantLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "provider_duration_seconds",
			Help:      "Latency of chat-completion provider calls",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"store", "operation"}),
	}
}
