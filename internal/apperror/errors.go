// Package apperror holds the error taxonomy shared by the proposal engine
// and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidState is returned when a proposal is not in the status a transition requires.
	ErrInvalidState = errors.New("invalid proposal state")
	// ErrNotFound is returned for a missing proposal, execution or campaign reference.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedCategory is returned when a category has no automatic handler.
	ErrUnsupportedCategory = errors.New("unsupported category")
	// ErrRollbackExpired is returned when the rollback window has closed.
	ErrRollbackExpired = errors.New("rollback window expired")
	// ErrExecutionFailed wraps a failed platform mutation surfaced through approve.
	ErrExecutionFailed = errors.New("execution failed")
)

// SafeguardError is a blocking safeguard rule violation.
type SafeguardError struct {
	Reason string
}

func (e *SafeguardError) Error() string {
	return "safeguard: " + e.Reason
}

// ValidationError carries every violation found in a single validation pass.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// InvalidState builds an ErrInvalidState with the offending statuses.
func InvalidState(id, current, required string) error {
	return fmt.Errorf("%w: proposal %s is %s, expected %s", ErrInvalidState, id, current, required)
}

// NotFound builds an ErrNotFound for the named entity.
func NotFound(entity, id string) error {
	if id == "" {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return fmt.Errorf("%s %s %w", entity, id, ErrNotFound)
}

// IsSafeguard reports whether err is, or wraps, a *SafeguardError.
func IsSafeguard(err error) bool {
	var se *SafeguardError
	return errors.As(err, &se)
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
