package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the names shown to users
var FieldLabels = map[string]string{
	"Username":    "username",
	"Email":       "email",
	"Description": "description",
}

// FormatValidationErrors converts validator.ValidationErrors to user-facing messages.
// Order follows the validator's field order.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}

	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)

	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)

	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to lower spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
