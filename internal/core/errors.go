package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error kinds surfaced to callers. The HTTP layer maps each to a status code.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountTooLarge = errors.New("amount too large")
	ErrInvalidDate    = errors.New("invalid date")
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a validation error for a single field.
func NewValidationError(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Add records a failure for field.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) minLen(field, value string, n int) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		if n == 1 {
			e.Add(field, "is required")
			return
		}
		e.Add(field, "must be at least %d characters", n)
	}
}

func (e *ValidationError) positive(field string, m Money) {
	if m.Cents <= 0 {
		e.Add(field, "must be greater than zero")
	}
}

func (e *ValidationError) nonNegative(field string, m Money) {
	if m.Cents < 0 {
		e.Add(field, "must not be negative")
	}
}

func (e *ValidationError) date(field string, d Date) {
	if err := d.Validate(); err != nil {
		e.Add(field, "must be a valid date")
	}
}
