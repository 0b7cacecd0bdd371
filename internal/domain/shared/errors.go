package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized  = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidToken  = NewDomainError("INVALID_TOKEN", "Token is invalid, expired or already used")
	ErrIntegrity     = NewDomainError("INTEGRITY", "Data integrity violation")
)

// NewValidationError creates a VALIDATION_ERROR with a field-specific message
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("%s: %s", field, message),
	}
}

// NewConflictStateError reports a state-machine verb rejected in the
// current status
func NewConflictStateError(current, verb string) *DomainError {
	return &DomainError{
		Code:    "CONFLICT_STATE",
		Message: fmt.Sprintf("operation %s is not allowed in status %s", verb, current),
	}
}
