package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeDateRangeOverlap    = "DATE_RANGE_OVERLAP"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeAlreadyProcessed    = "ALREADY_PROCESSED"
	CodeConfigurationGap    = "CONFIGURATION_GAP"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
