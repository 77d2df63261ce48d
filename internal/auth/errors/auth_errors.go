package autherrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrTokenNotFound = apperror.New(
		apperror.CodeUnauthorized,
		"Token not found",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"Token expired",
		http.StatusUnauthorized,
	)
	ErrTokenRevoked = apperror.New(
		apperror.CodeUnauthorized,
		"Token has been revoked",
		http.StatusUnauthorized,
	)
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid credentials",
		http.StatusUnauthorized,
	)
	ErrUserNotAvailable = apperror.New(
		apperror.CodeForbidden,
		"User is not available",
		http.StatusForbidden,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to generate token",
		http.StatusInternalServerError,
	)
)

var ErrAccountNotFound = apperror.New(
	apperror.CodeUnauthorized,
	"Account no longer exists",
	http.StatusUnauthorized,
)
