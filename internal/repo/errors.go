package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that the referenced entity does not exist.
	ErrNotFound = errors.New("repo: not found")
	// ErrAlreadyProcessed signals a decision on a non-pending transaction
	// or complaint; terminal records never change again.
	ErrAlreadyProcessed = errors.New("repo: already processed")
	// ErrBanned signals the acting user is banned.
	ErrBanned = errors.New("repo: user is banned")
	// ErrDuplicate signals a uniqueness violation (telegram id, setting key).
	ErrDuplicate = errors.New("repo: duplicate")
)

// ValidationError reports user input rejected by an entity service. It is
// recovered locally: the conversation stays in its step and re-prompts.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("repo: validation: %s", e.Reason)
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
