package domain

import (
	"encoding/json"
	"errors"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrActorNotFound        = errors.New("actor not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrTokenNotFound        = errors.New("token not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrDuplicateName        = errors.New("name already exists")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateToken       = errors.New("access token already exists")
	ErrConfirmationNotFound = errors.New("confirmation token not found")
	ErrInsufficientScope    = errors.New("insufficient scope")
)

// FieldErrors maps a request field to the messages raised against it.
type FieldErrors map[string][]string

// Add appends msg to the messages for field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// String renders the map as JSON text with sorted keys.
func (f FieldErrors) String() string {
	b, err := json.Marshal(map[string][]string(f))
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ValidationError reports malformed, missing or mismatched input.
type ValidationError struct {
	Reason string
	Fields FieldErrors
}

func NewValidationError(reason, field, msg string) *ValidationError {
	return &ValidationError{Reason: reason, Fields: FieldErrors{field: {msg}}}
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "validation failed: " + e.Fields.String()
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Reason string
	Fields FieldErrors
}

func NewConflictError(reason, field, msg string) *ConflictError {
	return &ConflictError{Reason: reason, Fields: FieldErrors{field: {msg}}}
}

func (e *ConflictError) Error() string { return e.Reason }

// AuthError reports a bad or unknown bearer or client.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// ServerError reports an internal misconfiguration or failure. Reason is
// safe to log; Err carries the cause and is never shown to clients.
type ServerError struct {
	Reason string
	Err    error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ServerError) Unwrap() error { return e.Err }
