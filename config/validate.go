package config

import "github.com/go-playground/validator/v10"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("provider", validProvider)
	return v
}

// validProvider validates if a given name is a supported provider.
func validProvider(fl validator.FieldLevel) bool {
	return EnvPrefix(fl.Field().String()) != ""
}
