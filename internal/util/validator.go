package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ApiError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%v is required", field)
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("%v must be at least %v characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%v must be at most %v characters", field, fe.Param())
	case "strNotEmpty":
		return fmt.Sprintf("%v must not be empty", field)
	default:
		return fe.Error()
	}
}

// GenerateErrorMessages turns validator errors into a list of readable
// field errors; any other error is passed through as a single message.
func GenerateErrorMessages(err error) any {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]ApiError, len(ve))
		for i, fe := range ve {
			out[i] = ApiError{Field: fe.Field(), Message: msgForTag(fe)}
		}
		return out
	}

	return []ApiError{{Message: err.Error()}}
}

// StrNotEmpty rejects strings that are only whitespace.
func StrNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
