package balanceerrors

import (
	"fmt"
	"net/http"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year",
		http.StatusBadRequest,
	)
	ErrInvalidField = apperror.New(
		apperror.CodeInvalidInput,
		"invalid balance field",
		http.StatusBadRequest,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"days must be greater than zero",
		http.StatusBadRequest,
	)
)

// Insufficient reports a shortfall on one balance field.
func Insufficient(field string, available, requested int) *apperror.AppError {
	return apperror.New(
		apperror.CodeInsufficientBalance,
		fmt.Sprintf("insufficient %s leave balance: available %d, requested %d", field, available, requested),
		http.StatusUnprocessableEntity,
	)
}
