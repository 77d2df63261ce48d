package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave record not found",
		http.StatusNotFound,
	)
	ErrLeaveNotOwner = apperror.New(
		apperror.CodeForbidden,
		"You can only modify your own leave records",
		http.StatusForbidden,
	)
	ErrLeaveNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"Only pending leave records can be updated",
		http.StatusForbidden,
	)
	ErrLeaveAlreadyReviewed = apperror.New(
		apperror.CodeInvalidState,
		"Only pending leave records can be approved or rejected",
		http.StatusForbidden,
	)
	ErrLeaveNotDeletable = apperror.New(
		apperror.CodeInvalidState,
		"Only pending leave records can be deleted",
		http.StatusForbidden,
	)
	ErrLeaveUpdateFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to update leave record",
		http.StatusInternalServerError,
	)
	ErrLeaveDeleteFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to delete leave record",
		http.StatusInternalServerError,
	)
)

// Field messages for the leave validation profile.
const (
	MsgEmployeeUnknown    = "The selected employee id is invalid."
	MsgStartBeforeToday   = "The start date must be a date after or equal to today."
	MsgEndBeforeStart     = "The end date must be a date after or equal to start date."
	MsgReasonRequired     = "The reason field is required."
	MsgInvalidDate        = "The date must be in the format YYYY-MM-DD."
	MsgEmployeeIDRequired = "The employee id field is required."
)
