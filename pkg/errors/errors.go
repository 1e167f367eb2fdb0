package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a referenced id does not exist
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a malformed or out-of-range field
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a uniqueness or duplicate-review violation
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeConcurrency indicates a write lost a race, or derived state could not be refreshed
	ErrorTypeConcurrency ErrorType = "CONCURRENCY"

	// ErrorTypePersistence indicates the repository layer failed
	ErrorTypePersistence ErrorType = "PERSISTENCE"

	// ErrorTypeUnauthorized indicates rejected credentials
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	// Field names the offending input field, if any.
	Field string
	// ID names the offending entity id, if any.
	ID string
	// Stale marks a ConcurrencyError returned alongside a successfully written
	// primary record whose derived state could not be refreshed.
	Stale bool
	Err   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	switch {
	case e.Field != "" && e.ID != "":
		msg = fmt.Sprintf("%s (field %s, id %s)", msg, e.Field, e.ID)
	case e.Field != "":
		msg = fmt.Sprintf("%s (field %s)", msg, e.Field)
	case e.ID != "":
		msg = fmt.Sprintf("%s (id %s)", msg, e.ID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error for a field
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Field:   field,
	}
}

// NewNotFoundError creates a new not found error for an entity id
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		ID:      id,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(field, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
		Field:   field,
	}
}

// NewConcurrencyError creates a new concurrency error for an entity id
func NewConcurrencyError(id, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConcurrency,
		Message: message,
		ID:      id,
		Err:     err,
	}
}

// NewStaleError marks derived state of id as not refreshed after a committed write
func NewStaleError(id string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConcurrency,
		Message: "derived state not refreshed",
		ID:      id,
		Stale:   true,
		Err:     err,
	}
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypePersistence,
		Message: message,
		Err:     err,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of type t.
func IsType(err error, t ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == t
}

func IsNotFound(err error) bool    { return IsType(err, ErrorTypeNotFound) }
func IsValidation(err error) bool  { return IsType(err, ErrorTypeValidation) }
func IsConflict(err error) bool    { return IsType(err, ErrorTypeConflict) }
func IsConcurrency(err error) bool { return IsType(err, ErrorTypeConcurrency) }
func IsPersistence(err error) bool { return IsType(err, ErrorTypePersistence) }

// IsStale reports whether err flags a committed write with stale derived state.
func IsStale(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == ErrorTypeConcurrency && appErr.Stale
}

// Persistence passes AppErrors through unchanged and wraps anything else as a
// PersistenceError.
func Persistence(message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	return NewPersistenceError(message, err)
}
