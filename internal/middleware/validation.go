package middleware

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	bookingvalidator "github.com/jwalitptl/booking-api/pkg/validator"
)

// RegisterValidators installs json field names and the custom rules on gin's
// binding engine. Call once before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return bookingvalidator.Register(v)
}
