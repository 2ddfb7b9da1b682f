package doctor

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type ProfileService interface {
	GetByUserID(ctx context.Context, accountID uuid.UUID) (*model.DoctorProfile, error)
	UpdateOwn(ctx context.Context, accountID uuid.UUID, req *model.UpdateDoctorRequest) (*model.DoctorProfile, error)
}

type AppointmentService interface {
	ListForDoctor(ctx context.Context, doctor *model.DoctorProfile) ([]*model.Appointment, error)
	Accept(ctx context.Context, doctor *model.DoctorProfile, appointmentID string) (*model.Appointment, error)
	Reject(ctx context.Context, doctor *model.DoctorProfile, appointmentID string) (*model.Appointment, error)
}

type MedicalService interface {
	UploadReports(ctx context.Context, doctor *model.DoctorProfile, appointmentID string, files []*multipart.FileHeader) (*model.MedicalRecordBucket, error)
}

type Handler struct {
	profiles     ProfileService
	appointments AppointmentService
	medical      MedicalService
}

func NewHandler(profiles ProfileService, appointments AppointmentService, medical MedicalService) *Handler {
	return &Handler{
		profiles:     profiles,
		appointments: appointments,
		medical:      medical,
	}
}

// RegisterRoutes mounts the doctor routes. Profile routes only need a valid
// token; the workflow routes also need the approved-doctor gate.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, approvedDoctor gin.HandlerFunc) {
	doctors := protected.Group("/doctors")
	{
		doctors.GET("/doctor-info", h.Info)
		doctors.PATCH("/update-doctor-info", h.UpdateInfo)
	}

	gated := doctors.Group("", approvedDoctor)
	{
		gated.GET("/doctor-appointments", h.ListAppointments)
		gated.PATCH("/accept-appointment", h.AcceptAppointment)
		gated.DELETE("/reject-appointment", h.RejectAppointment)
		gated.POST("/upload", h.UploadReports)
	}
}

func (h *Handler) Info(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}

	doctor, err := h.profiles.GetByUserID(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "", doctor)
}

func (h *Handler) UpdateInfo(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}
	var req model.UpdateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.profiles.UpdateOwn(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Doctor info updated successfully", doctor)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	doctor, ok := handler.CallerDoctor(c)
	if !ok {
		return
	}

	appointments, err := h.appointments.ListForDoctor(c.Request.Context(), doctor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "", appointments, len(appointments))
}

func (h *Handler) AcceptAppointment(c *gin.Context) {
	h.decide(c, h.appointments.Accept, "Appointment accepted successfully")
}

func (h *Handler) RejectAppointment(c *gin.Context) {
	h.decide(c, h.appointments.Reject, "Appointment rejected successfully")
}

func (h *Handler) decide(c *gin.Context, op func(context.Context, *model.DoctorProfile, string) (*model.Appointment, error), message string) {
	doctor, ok := handler.CallerDoctor(c)
	if !ok {
		return
	}

	var req model.AppointmentDecisionRequest
	if id := c.Query("appointmentId"); id != "" && c.Request.ContentLength <= 0 {
		req.AppointmentID = id
	} else if !handler.BindJSON(c, &req) {
		return
	}

	apt, err := op(c.Request.Context(), doctor, req.AppointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, message, apt)
}

func (h *Handler) UploadReports(c *gin.Context) {
	doctor, ok := handler.CallerDoctor(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondWithError(c, apperrors.BadRequest("upload exceeds the request size limit", err))
			return
		}
		httputil.RespondWithError(c, apperrors.BadRequest("multipart form with file and appointmentId is required", err))
		return
	}
	defer form.RemoveAll()

	appointmentID := ""
	if values := form.Value["appointmentId"]; len(values) > 0 {
		appointmentID = values[0]
	}

	bucket, err := h.medical.UploadReports(c.Request.Context(), doctor, appointmentID, form.File["file"])
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Medical reports uploaded successfully", bucket)
}
