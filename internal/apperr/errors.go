package apperr

import "fmt"

// ErrorKind classifies application errors for transport-level mapping.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindForbidden  ErrorKind = "forbidden"
)

// AppError is the shared error type for expected application failures.
type AppError struct {
	Kind    ErrorKind
	Message string
}

// Error returns the error message.
func (e *AppError) Error() string {
	return e.Message
}

// NewValidationError creates an error for invalid input.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing resource.
func NewNotFoundError(resource, id string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// NewConflictError creates an error for a concurrent-modification conflict.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for an access violation.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}
