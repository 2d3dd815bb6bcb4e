package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPStatuser is implemented by errors that know which HTTP status they map to.
type HTTPStatuser interface {
	HTTPStatus() int
}

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// ConflictError reports a uniqueness violation on a single field.
// Signup surfaces it as 400, matching the public contract of the service.
type ConflictError struct {
	Field   string
	Message string
}

// NewConflictError creates a new conflict error for field
func NewConflictError(field, message string) *ConflictError {
	return &ConflictError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Field)
}

// HTTPStatus returns the HTTP status for this error
func (e *ConflictError) HTTPStatus() int { return http.StatusBadRequest }

// AuthError is returned for bad credentials. The message never says which
// part of the credentials was wrong.
type AuthError struct {
	Message string
}

// NewAuthError creates a new authentication failure
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Invalid credentials"
}

// HTTPStatus returns the HTTP status for this error
func (e *AuthError) HTTPStatus() int { return http.StatusUnauthorized }

// UnauthorizedError is returned when a bearer token is missing, malformed or expired.
type UnauthorizedError struct {
	Message string
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// Error implements the error interface
func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Could not validate credentials"
}

// HTTPStatus returns the HTTP status for this error
func (e *UnauthorizedError) HTTPStatus() int { return http.StatusUnauthorized }

// ForbiddenError is returned when an authenticated caller acts on a resource it does not own.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// Error implements the error interface
func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "permission denied"
}

// HTTPStatus returns the HTTP status for this error
func (e *ForbiddenError) HTTPStatus() int { return http.StatusForbidden }

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }

// StatusOf returns the HTTP status carried by err or any error it wraps.
// Untyped errors map to 500.
func StatusOf(err error) int {
	var s HTTPStatuser
	if errors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
