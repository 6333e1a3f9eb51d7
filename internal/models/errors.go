package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidID    = errors.New("invalid id")
	ErrValidation   = errors.New("validation error")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// InvalidTransitionError is returned when a request status change is not
// allowed from the current status. It matches ErrValidation in errors.Is
// checks so handlers map it to the same response class.
type InvalidTransitionError struct {
	From RequestStatus
	To   RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrValidation
}
