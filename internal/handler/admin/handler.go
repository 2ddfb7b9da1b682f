package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AccountService interface {
	List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error)
	ExportXLSX(ctx context.Context) ([]byte, error)
}

type DoctorService interface {
	List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error)
	ChangeStatus(ctx context.Context, doctorID uuid.UUID, status string) (*model.DoctorProfile, error)
}

type Handler struct {
	accounts AccountService
	doctors  DoctorService
	now      func() time.Time
}

func NewHandler(accounts AccountService, doctors DoctorService) *Handler {
	return &Handler{
		accounts: accounts,
		doctors:  doctors,
		now:      time.Now,
	}
}

// RegisterRoutes expects admin to carry both the token and the admin gate.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/all-users", h.ListUsers)
	admin.GET("/all-doctors", h.ListDoctors)
	admin.POST("/change-status", h.ChangeStatus)
	admin.GET("/export-users", h.ExportUsers)
}

func (h *Handler) ListUsers(c *gin.Context) {
	filters := &model.AccountFilters{Role: model.Role(c.Query("role"))}

	accounts, err := h.accounts.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "", accounts, len(accounts))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	filters := &model.DoctorFilters{Status: model.DoctorStatus(c.Query("status"))}

	doctors, err := h.doctors.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "", doctors, len(doctors))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	var req model.ChangeStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	// Binding already checked the uuid format.
	doctorID := uuid.MustParse(req.DoctorID)

	doctor, err := h.doctors.ChangeStatus(c.Request.Context(), doctorID, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if !doctor.Approved() {
		httputil.RespondWithSuccess(c, http.StatusOK, "Doctor account rejected", doctor)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Doctor account approved", doctor)
}

func (h *Handler) ExportUsers(c *gin.Context) {
	data, err := h.accounts.ExportXLSX(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("users-%s.xlsx", h.now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
