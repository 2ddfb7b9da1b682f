// Package handler holds helpers shared by the per-audience HTTP handlers.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

// BindJSON decodes and validates the body into dst. On failure it writes the
// 400 response and returns false.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httputil.RespondWithError(c, validator.ToAppError(err))
		return false
	}
	return true
}

// CallerID returns the authenticated account id, writing a 401 when absent.
func CallerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("not authorized", nil))
		return uuid.Nil, false
	}
	return id, true
}

// CallerDoctor returns the approved profile resolved by the doctor gate.
func CallerDoctor(c *gin.Context) (*model.DoctorProfile, bool) {
	doctor, ok := middleware.DoctorProfile(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Forbidden("doctor access required", nil))
		return nil, false
	}
	return doctor, true
}
