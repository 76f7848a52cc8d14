// Package errors provides the typed error taxonomy used across the engine.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeValidation indicates malformed input rejected at construction
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeDataUnavailable indicates a missing or empty market index series
	TypeDataUnavailable Type = "DATA_UNAVAILABLE"

	// TypeNotSupported indicates an operation the specification cannot support
	TypeNotSupported Type = "NOT_SUPPORTED"

	// TypeState indicates an illegal settlement state transition or mutation
	TypeState Type = "STATE_VIOLATION"

	// TypeConflict indicates an optimistic-concurrency conflict on write
	TypeConflict Type = "CONCURRENCY_CONFLICT"

	// TypeNotFound indicates a record that does not exist
	TypeNotFound Type = "NOT_FOUND"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(TypeValidation, message)
}

// Validationf creates a formatted validation error
func Validationf(format string, args ...interface{}) *Error {
	return Newf(TypeValidation, format, args...)
}

// DataUnavailable creates an error for a missing or empty index series
func DataUnavailable(indexName string) *Error {
	return Newf(TypeDataUnavailable, "no price observations for index: %s", indexName)
}

// NotSupported creates a not supported error
func NotSupported(operation string) *Error {
	return Newf(TypeNotSupported, "operation not supported: %s", operation)
}

// State creates a state violation error
func State(message string) *Error {
	return New(TypeState, message)
}

// Conflict creates an optimistic-concurrency conflict error
func Conflict(resourceType, identifier string) *Error {
	return Newf(TypeConflict, "stale write on %s: %s", resourceType, identifier)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
