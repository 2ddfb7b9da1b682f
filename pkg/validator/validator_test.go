package validator

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/pkg/errors"
)

type applyForm struct {
	Phone string   `json:"phone" validate:"required,phone"`
	Email string   `json:"email" validate:"required,email"`
	Fee   float64  `json:"feesPerConsultation" validate:"gt=0"`
	Tags  []string `json:"specialization" validate:"min=1,dive,required"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestPhoneRule(t *testing.T) {
	v := newValidate(t)

	for _, phone := range []string{"0123456789", "123456789012345"} {
		assert.NoError(t, v.Var(phone, "phone"), phone)
	}
	for _, phone := range []string{"123", "1234567890123456", "+1234567890", "12345abcde"} {
		assert.Error(t, v.Var(phone, "phone"), phone)
	}
}

func TestToAppError_FieldList(t *testing.T) {
	v := newValidate(t)

	err := v.Struct(applyForm{Phone: "12", Email: "nope", Fee: 0, Tags: []string{""}})
	appErr := ToAppError(err)

	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.ElementsMatch(t, []errors.FieldError{
		{Field: "phone", Message: "must contain 10 to 15 digits"},
		{Field: "email", Message: "must be a valid email"},
		{Field: "feesPerConsultation", Message: "must be greater than 0"},
		{Field: "specialization[0]", Message: "is required"},
	}, appErr.Fields)
}

func TestToAppError_NotValidation(t *testing.T) {
	appErr := ToAppError(assert.AnError)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.Empty(t, appErr.Fields)
	assert.Equal(t, "invalid request body", appErr.Message)
}

func TestToAppError_WrongJSONType(t *testing.T) {
	var form struct {
		Fee  float64  `json:"feesPerConsultation"`
		Tags []string `json:"specialization"`
	}
	err := json.Unmarshal([]byte(`{"feesPerConsultation":"cheap"}`), &form)
	require.Error(t, err)

	appErr := ToAppError(err)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.Equal(t, []errors.FieldError{
		{Field: "feesPerConsultation", Message: "must be a number"},
	}, appErr.Fields)
}
