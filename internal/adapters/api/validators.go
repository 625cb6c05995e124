package api

import (
	"cardbinder.app/internal/core/ownership"
	"cardbinder.app/pkg/validation"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags used by the request structs.
// It must run before the first request is bound.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("condition", validateCondition); err != nil {
		return err
	}
	return v.RegisterValidation("language", validateLanguage)
}

// validateCondition validates the card condition enum value
func validateCondition(fl validator.FieldLevel) bool {
	return ownership.Condition(fl.Field().String()).IsValid()
}

func validateLanguage(fl validator.FieldLevel) bool {
	return validation.IsSupportedLanguage(fl.Field().String())
}
