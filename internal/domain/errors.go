package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced at the HTTP boundary. Everything here is a
// user-recoverable condition; storage failures are wrapped separately
// and never abort an in-memory session.
var (
	ErrImport        = errors.New("no usable sheets: each sheet needs a header row and at least one data row")
	ErrTableNotFound = errors.New("table not found")
	ErrRowNotFound   = errors.New("row not found")
	ErrItemNotFound  = errors.New("selected item not found")
	ErrNoRoom        = errors.New("no room available, set the house layout first")
	ErrEmptyExport   = errors.New("nothing to export")
)

// ValidationError reports a user-entered field that failed validation.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}
