package approvalerrors

import (
	"net/http"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"
)

var (
	ErrStepNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval step not found",
		http.StatusNotFound,
	)
	ErrClaimNotFound = apperror.New(
		apperror.CodeNotFound,
		"claim not found",
		http.StatusNotFound,
	)
	ErrNotAssignedApprover = apperror.New(
		apperror.CodeUnauthorized,
		"you are not the assigned approver for this step",
		http.StatusForbidden,
	)
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeAlreadyProcessed,
		"approval step already processed",
		http.StatusConflict,
	)
	ErrStepNotActionable = apperror.New(
		apperror.CodeInvalidState,
		"approval step is not awaiting action",
		http.StatusConflict,
	)
	ErrConfigurationGap = apperror.New(
		apperror.CodeConfigurationGap,
		"no approver could be resolved for this claim type",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)
	ErrInvalidClaimType = apperror.New(
		apperror.CodeInvalidInput,
		"claim type must be EXPENSE or ADVANCE",
		http.StatusBadRequest,
	)
	ErrInvalidApproverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approver id",
		http.StatusBadRequest,
	)
)
