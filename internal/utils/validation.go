package contextutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValidUUID checks if s is a canonical UUID using go-playground/validator
func IsValidUUID(s string) bool {
	return validate.Var(s, "uuid") == nil
}
