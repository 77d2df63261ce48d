package usererrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrEmailTaken = apperror.FieldError("email", "The email has already been taken.")

	ErrEmployeeIDTaken = apperror.FieldError("employee_id", "The employee id has already been taken.")

	ErrUserLookupFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to load user",
		http.StatusInternalServerError,
	)
)
