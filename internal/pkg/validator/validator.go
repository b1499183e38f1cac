package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	ritmRe   = regexp.MustCompile(`^RITM\d{4,}$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("ritm", func(fl validator.FieldLevel) bool {
		return IsRITM(fl.Field().String())
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// IsRITM reports whether code is a ticketing reference such as RITM0012345.
func IsRITM(code string) bool {
	return ritmRe.MatchString(code)
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range errs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}
