package apperrors

import (
	"errors"
	"sort"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("user account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Upstream collaborator errors
	ErrGateway = errors.New("payment gateway error")
)

// NonFieldErrors is the field key used for errors that are not tied to a single input field.
const NonFieldErrors = "non_field_errors"

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewGatewayError wraps a message reported by the payment collaborator
func NewGatewayError(message string) error {
	return &CustomError{
		Err:     ErrGateway,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// ValidationError collects field-scoped validation messages.
// It unwraps to ErrValidationFailed.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a validation error with a single field message
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{Fields: make(map[string][]string)}
	return v.Add(field, message)
}

// Add appends a message for the given field
func (v *ValidationError) Add(field, message string) *ValidationError {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
	return v
}

// HasErrors reports whether any field has a message
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// FieldNames returns the fields with errors in a stable order
func (v *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Error implements error interface
func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, name := range v.FieldNames() {
		parts = append(parts, name+": "+strings.Join(v.Fields[name], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Unwrap implements errors.Unwrap interface
func (v *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// AsValidationError extracts a ValidationError from err
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
