package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates a missing or invalid identity
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeForbidden indicates the principal may not perform the action
	ErrorTypeForbidden ErrorType = "FORBIDDEN"

	// ErrorTypeInvariant indicates a business rule violation
	ErrorTypeInvariant ErrorType = "INVARIANT"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents an application error.
// Only the payload fields relevant to Type are populated.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error

	// VALIDATION
	Fields []FieldError
	// NOT_FOUND
	Kind string
	ID   string
	// CONFLICT
	Field string
	Value string
	// FORBIDDEN / UNAUTHORIZED
	Reason string
	// INVARIANT
	Rule string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error for an entity kind and id
func NewNotFoundError(kind, id string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s with id %s not found", kind, id),
		Kind:    kind,
		ID:      id,
	}
}

// NewValidationError creates a new validation error carrying every invalid field
func NewValidationError(fields ...FieldError) *AppError {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: strings.Join(msgs, "; "),
		Fields:  fields,
	}
}

// NewConflictError creates a new conflict error for a unique field
func NewConflictError(field, value string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("%s %q already exists", field, value),
		Field:   field,
		Value:   value,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
		Reason:  "unauthenticated",
	}
}

// NewForbiddenError creates a new authorization denial with a reason code
func NewForbiddenError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Message: message,
		Reason:  reason,
	}
}

// NewInvariantError creates a new domain invariant violation
func NewInvariantError(rule, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvariant,
		Message: message,
		Rule:    rule,
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

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}
