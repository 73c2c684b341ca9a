package helpers

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground validator with service-specific rules
type CustomValidator struct {
	validate *validator.Validate
}

// NewCustomValidator creates a new custom validator
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("notblank", validateNotBlank)

	return &CustomValidator{validate: v}
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// validateNotBlank rejects strings that are empty after trimming whitespace.
// "required" alone lets all-whitespace values through.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
