package services

import (
	"errors"
	"fmt"
	"time"
)

// Caller-facing outcomes. Controllers map these to HTTP statuses; anything
// else that comes out of a service is a downstream failure (5xx).
var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidWindow     = errors.New("invalid_window")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation_failed")
)

// Conflict identifies one record blocking a requested window.
type Conflict struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"` // "booking" or "hold"
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    string    `json:"reason,omitempty"`
}

// ConflictError carries the overlapping records so callers can show why a
// slot is blocked, not just that it is.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: window overlaps %d existing record(s)", len(e.Conflicts))
}

// Is makes errors.Is(err, ErrConflict) hold for ConflictError values.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
