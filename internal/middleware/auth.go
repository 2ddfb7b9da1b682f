package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

const (
	ContextUserID        = "user_id"
	ContextEmail         = "email"
	ContextRole          = "role"
	ContextDoctorProfile = "doctor_profile"
)

// DoctorLookup resolves the doctor profile owned by an account.
type DoctorLookup interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error)
}

type AuthMiddleware struct {
	tokens  auth.TokenService
	doctors DoctorLookup
}

func NewAuthMiddleware(tokens auth.TokenService, doctors DoctorLookup) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:  tokens,
		doctors: doctors,
	}
}

// Authenticate verifies the bearer token and sets the caller identity in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, apperrors.Unauthorized("token missing", nil))
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized("not authorized", err))
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized("not authorized", err))
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, model.Role(claims.Role))

		l := log.Ctx(c.Request.Context()).With().Str("user_id", userID.String()).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != model.RoleAdmin {
			httputil.RespondWithError(c, apperrors.Forbidden("admin access required", nil))
			return
		}
		c.Next()
	}
}

// RequireApprovedDoctor loads the caller's doctor profile and rejects anyone
// without an approved one. The profile is stored under ContextDoctorProfile.
func (m *AuthMiddleware) RequireApprovedDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized("not authorized", nil))
			return
		}

		doctor, err := m.doctors.GetByUserID(c.Request.Context(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			httputil.RespondWithError(c, apperrors.Forbidden("doctor access required", nil))
			return
		}
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		if !doctor.Approved() {
			httputil.RespondWithError(c, apperrors.Forbidden("doctor account is not approved", nil))
			return
		}

		c.Set(ContextDoctorProfile, doctor)
		c.Next()
	}
}

func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func Role(c *gin.Context) model.Role {
	role, _ := c.Get(ContextRole)
	r, _ := role.(model.Role)
	return r
}

func DoctorProfile(c *gin.Context) (*model.DoctorProfile, bool) {
	v, ok := c.Get(ContextDoctorProfile)
	if !ok {
		return nil, false
	}
	doctor, ok := v.(*model.DoctorProfile)
	return doctor, ok
}
