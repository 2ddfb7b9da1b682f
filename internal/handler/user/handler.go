package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Account, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type AccountService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAccountRequest) (*model.Account, error)
	Notifications(ctx context.Context, id uuid.UUID) (*model.NotificationsView, error)
	MarkAllSeen(ctx context.Context, id uuid.UUID) (*model.NotificationsView, error)
	ClearSeen(ctx context.Context, id uuid.UUID) (*model.NotificationsView, error)
}

type DoctorService interface {
	Apply(ctx context.Context, accountID uuid.UUID, req *model.ApplyDoctorRequest) (*model.DoctorProfile, error)
	ListApproved(ctx context.Context) ([]model.PublicDoctor, error)
}

type AppointmentService interface {
	Book(ctx context.Context, requesterID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error)
	CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.Availability, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)
}

type MedicalService interface {
	History(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecordBucket, error)
}

type AssistantService interface {
	Ask(ctx context.Context, message string) (*model.AssistantReply, error)
}

type Services struct {
	Auth         AuthService
	Accounts     AccountService
	Doctors      DoctorService
	Appointments AppointmentService
	Medical      MedicalService
	Assistant    AssistantService
}

type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the user routes; protected must already carry the
// authentication gate and publicCache the listing cache headers.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup, publicCache gin.HandlerFunc) {
	users := public.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.GET("/all-doctors", publicCache, h.ListDoctors)
	}

	me := protected.Group("/users")
	{
		me.GET("/info", h.Info)
		me.PATCH("/update-info", h.UpdateInfo)
		me.POST("/create-doctor-profile", h.ApplyDoctor)
		me.POST("/book-appointment", h.BookAppointment)
		me.POST("/booking-availability", h.CheckAvailability)
		me.GET("/user-appointments", h.ListAppointments)
		me.GET("/medical-history", h.MedicalHistory)
		me.GET("/notifications", h.Notifications)
		me.POST("/notifications/mark-all-seen", h.MarkAllSeen)
		me.DELETE("/notifications/seen", h.ClearSeen)
		me.POST("/assistant", h.Assistant)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	account, err := h.svc.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "User registered successfully", account)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Login successful", resp)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.Doctors.ListApproved(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "", doctors, len(doctors))
}

func (h *Handler) Info(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}

	account, err := h.svc.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "", account)
}

func (h *Handler) UpdateInfo(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}
	var req model.UpdateAccountRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	account, err := h.svc.Accounts.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "User info updated successfully", account)
}

func (h *Handler) ApplyDoctor(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}
	var req model.ApplyDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.svc.Doctors.Apply(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Doctor account applied successfully", doctor)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}
	var req model.BookAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	apt, err := h.svc.Appointments.Book(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Appointment booked successfully", apt)
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	var req model.AvailabilityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	availability, err := h.svc.Appointments.CheckAvailability(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, availability.Message, availability)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}

	appointments, err := h.svc.Appointments.ListForUser(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "", appointments, len(appointments))
}

func (h *Handler) MedicalHistory(c *gin.Context) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}

	buckets, err := h.svc.Medical.History(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "", buckets, len(buckets))
}

func (h *Handler) Notifications(c *gin.Context) {
	h.notifications(c, h.svc.Accounts.Notifications, "")
}

func (h *Handler) MarkAllSeen(c *gin.Context) {
	h.notifications(c, h.svc.Accounts.MarkAllSeen, "All notifications marked as seen")
}

func (h *Handler) ClearSeen(c *gin.Context) {
	h.notifications(c, h.svc.Accounts.ClearSeen, "Seen notifications deleted")
}

func (h *Handler) notifications(c *gin.Context, op func(context.Context, uuid.UUID) (*model.NotificationsView, error), message string) {
	id, ok := handler.CallerID(c)
	if !ok {
		return
	}

	view, err := op(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, message, view)
}

func (h *Handler) Assistant(c *gin.Context) {
	var req model.AssistantRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	reply, err := h.svc.Assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "", reply)
}
