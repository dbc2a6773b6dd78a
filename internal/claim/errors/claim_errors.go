package claimerrors

import (
	"net/http"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidClaimType = apperror.New(
		apperror.CodeInvalidInput,
		"claim type must be EXPENSE or ADVANCE",
		http.StatusBadRequest,
	)
	ErrClaimNotFound = apperror.New(
		apperror.CodeNotFound,
		"claim not found",
		http.StatusNotFound,
	)
)
