package apperror

import "fmt"

type AppError struct {
	Code       string              // Error code (e.g., VALIDATION_ERROR)
	Message    string              // User-friendly message
	HTTPStatus int                 // HTTP status code
	Fields     map[string][]string // Field-keyed validation messages (optional)
	Err        error               // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code and status so that copies produced by WithFields or
// Wrap still compare equal to the sentinel they came from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.HTTPStatus == t.HTTPStatus && e.Message == t.Message
}

// WithFields returns a copy of the error carrying field-keyed messages.
func (e *AppError) WithFields(fields map[string][]string) *AppError {
	cp := *e
	cp.Fields = fields
	return &cp
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
