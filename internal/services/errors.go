package services

import "errors"

// Domain errors surfaced to the endpoint layer. Handlers translate these to
// HTTP statuses; anything else is treated as an internal failure and hidden
// from the caller.
var (
	// ErrAuthentication covers bad credentials and inactive accounts.
	ErrAuthentication = errors.New("no active account found with the given credentials")

	// ErrInvalidToken covers expired, malformed, revoked and replayed tokens.
	ErrInvalidToken = errors.New("token is invalid or expired")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// ValidationError carries field-level validation messages, keyed by the JSON
// field name.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether any message has been recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}
