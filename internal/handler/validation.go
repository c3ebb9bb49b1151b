package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/booking-api/internal/model"
)

// RegisterValidators installs the custom binding validators used by the
// request models. Call once at startup before routes are served.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return model.IsValidTimeSlot(fl.Field().String())
	})
}
