package analyses

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by lookups and updates on an unknown id.
var ErrNotFound = errors.New("analysis not found")

// ErrTerminal is returned when a status change targets a completed or failed analysis.
var ErrTerminal = errors.New("analysis already in terminal state")

// ErrInvalidPatch is returned for a patch that would break the status/results pairing:
// results or duration without completing, a failure reason without failing.
var ErrInvalidPatch = errors.New("invalid analysis patch")

// FieldError describes one invalid submission field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a submission before any analysis is created.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
