package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrSessionClosed   = errors.New("session already closed")
	ErrAlreadyOpen     = errors.New("an open session already exists for this day")
	ErrNoOpenEntry     = errors.New("no open session")
	ErrConflict        = errors.New("entry was modified concurrently")
	ErrNotFound        = errors.New("not found")
	ErrNothingToExport = errors.New("nothing to export")
)

// ValidationError describes rejected input. It unwraps to ErrValidation.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
