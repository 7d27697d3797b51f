package payrollerrors

import (
	"net/http"

	"hrms/internal/shared/apperror"
)

var (
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll record not found",
		http.StatusNotFound,
	)
	ErrInvalidPayrollID = apperror.New(
		apperror.CodeValidationError,
		"invalid payroll id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeValidationError,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrPayrollPeriodExists = apperror.New(
		apperror.CodeConflict,
		"a payroll record already exists for this employee and period",
		http.StatusConflict,
	)
	ErrNotPayrollOwner = apperror.New(
		apperror.CodeForbidden,
		"you can only access your own payroll records",
		http.StatusForbidden,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeValidationError,
		"salary components must not be negative",
		http.StatusBadRequest,
	)
	ErrInvalidPaymentDate = apperror.New(
		apperror.CodeValidationError,
		"invalid payment date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeValidationError,
		"payment status must be Processed or Paid",
		http.StatusBadRequest,
	)
)
