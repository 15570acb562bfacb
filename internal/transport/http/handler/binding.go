package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ailawyer/internal/prompt"
)

// RegisterValidators adds the custom binding rules used by request
// structs. It must run before the router serves traffic.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("chatmode", func(fl validator.FieldLevel) bool {
		_, ok := prompt.LookupMode(fl.Field().String())
		return ok
	})
}
