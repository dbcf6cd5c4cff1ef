package validation

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	defaultValidate *validator.Validate
	defaultOnce     sync.Once
)

// New returns the validator used for form input.
func New() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	defaultOnce.Do(func() { defaultValidate = New() })
	return defaultValidate.Var(s, "email") == nil
}
