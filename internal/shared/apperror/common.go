package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeValidation,
		"The given data was invalid",
		http.StatusUnprocessableEntity,
	)
)

// Validation builds a 422 error carrying field-keyed messages.
func Validation(fields map[string][]string) *AppError {
	return ErrInvalidInput.WithFields(fields)
}

// FieldError is a shorthand for a single-field validation failure.
func FieldError(field, message string) *AppError {
	return Validation(map[string][]string{field: {message}})
}
