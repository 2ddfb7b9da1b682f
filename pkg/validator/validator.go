package validator

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/booking-api/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^\d{10,15}$`)

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gt":       "must be greater than %s",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"phone":    "must contain 10 to 15 digits",
	"oneof":    "must be one of: %s",
}

// Register installs json field naming and the custom rules on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonTagName)
	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return fmt.Errorf("failed to register phone validator: %w", err)
	}
	return nil
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// FieldErrors flattens validator errors into the API field list.
func FieldErrors(err error) []errors.FieldError {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return nil
	}

	fields := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errors.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return fields
}

// ToAppError converts a binding failure into a validation AppError. Values
// of the wrong JSON type are reported against their field like rule failures.
func ToAppError(err error) *errors.AppError {
	if fields := FieldErrors(err); len(fields) > 0 {
		return errors.Validation("validation failed", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		return errors.Validation("validation failed", []errors.FieldError{{
			Field:   typeErr.Field,
			Message: typeMessage(typeErr.Type),
		}})
	}
	return errors.BadRequest("invalid request body", err)
}

var timeType = reflect.TypeOf(time.Time{})

func typeMessage(t reflect.Type) string {
	if t == nil {
		return "has an invalid type"
	}
	switch t.Kind() {
	case reflect.Struct:
		if t.ConvertibleTo(timeType) {
			return "must be an ISO 8601 date or date-time"
		}
		return "must be an object"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Slice, reflect.Array:
		return "must be a list"
	case reflect.Map:
		return "must be an object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "must be a number"
	}
	return "has an invalid type"
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "Struct.field.sub"; drop the struct name.
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}
