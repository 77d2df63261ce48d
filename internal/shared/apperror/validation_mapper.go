package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

func messageFor(e validator.FieldError) string {
	field := formatFieldName(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "oneof":
		return fmt.Sprintf("Valid %s values: %s.", strings.ToLower(field), strings.ReplaceAll(e.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", field, e.Param())
	case "max":
		return fmt.Sprintf("%s may not be greater than %s characters.", field, e.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match.", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in the format %s.", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

// MapValidationError turns a binding error into a 422 AppError keyed by json
// field name. Malformed bodies are reported under the "body" key.
func MapValidationError(err error) *AppError {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		fields := make(map[string][]string, len(errs))
		for _, e := range errs {
			fields[e.Field()] = append(fields[e.Field()], messageFor(e))
		}
		return Validation(fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return FieldError(typeErr.Field, fmt.Sprintf("%s has an invalid type.", formatFieldName(typeErr.Field)))
	case errors.As(err, &syntaxErr):
		return FieldError("body", "Request body is not valid JSON.")
	}
	return FieldError("body", "Request body is invalid.")
}
