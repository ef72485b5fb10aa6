package utils

import (
	"github.com/go-playground/validator/v10"

	"glucolog/domain"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = NewValidator()
}

// NewValidator registers the "mealtype" tag next to the built-in ones.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mealtype", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseMealType(fl.Field().String())
		return ok
	})
	return v
}
