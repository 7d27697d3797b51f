package notificationerrors

import (
	"net/http"

	"hrms/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
	ErrNotNotificationOwner = apperror.New(
		apperror.CodeForbidden,
		"you can only manage your own notifications",
		http.StatusForbidden,
	)
	ErrInvalidNotificationID = apperror.New(
		apperror.CodeValidationError,
		"invalid notification id",
		http.StatusBadRequest,
	)
)
