package middleware

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"quizgen/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("complexity", validateComplexity)
		_ = v.RegisterValidation("plan", validatePlan)
	})
}

// validateComplexity accepts empty values and the known tiers, in any case
func validateComplexity(fl validator.FieldLevel) bool {
	_, ok := models.ParseComplexity(fl.Field().String())
	return ok
}

func validatePlan(fl validator.FieldLevel) bool {
	_, ok := models.ParsePlan(fl.Field().String())
	return ok
}
