package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message.
// Message is safe to show to API clients.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Error constructors

// NewNotFoundError creates a new not found error for a resource
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewNotFoundMessage creates a not found error with a caller supplied message
func NewNotFoundMessage(msg string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: msg,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(msg string) error {
	return &DomainError{
		Code:    ErrCodeConflict,
		Message: msg,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(msg string) error {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: msg,
	}
}

// Helper functions to check error types

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return hasCode(err, ErrCodeInternal)
}

// IsConflict checks if the error is a conflict error
func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

// IsBadRequest checks if the error is a bad request error
func IsBadRequest(err error) bool {
	return hasCode(err, ErrCodeBadRequest)
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the client-safe message of a domain error, or fallback
func MessageOf(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) && de.Code != ErrCodeInternal {
		return de.Message
	}
	return fallback
}
