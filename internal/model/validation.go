package model

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/velvetarcana/booking-api/internal/timeslot"
)

// RegisterValidations installs custom binding rules on gin's validator
// engine. Call once at startup, before any request binding runs.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
			return timeslot.Valid(fl.Field().String())
		})
	}
}
