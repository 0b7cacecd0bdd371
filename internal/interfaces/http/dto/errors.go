package dto

import "net/http"

// Error codes returned to clients. Domain errors carry these codes
// directly; the handler layer only maps them to HTTP statuses.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when input fails validation
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks the privilege
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource does not exist
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when a unique resource would be duplicated
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConflictState is used when a workflow action is not legal
	// in the order's current status
	ErrCodeConflictState = "CONFLICT_STATE"
	// ErrCodeInvalidState is used when an operation is invalid for the
	// current state of a resource
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeInvalidToken is used when an approval token is unknown,
	// expired or already used
	ErrCodeInvalidToken = "INVALID_TOKEN"
	// ErrCodeIntegrity is used when a database constraint violation
	// escapes to the caller. Expected uniqueness collisions surface as
	// ALREADY_EXISTS instead; an escape is a server-side defect.
	ErrCodeIntegrity = "INTEGRITY"
	// ErrCodeCSV is used for file-level CSV failures; row-level
	// failures carry their own detail list
	ErrCodeCSV = "CSV_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflictState: http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeInvalidToken:  http.StatusBadRequest,
	ErrCodeIntegrity:     http.StatusInternalServerError,
	ErrCodeCSV:           http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code, or 500 for
// a code it does not know
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
