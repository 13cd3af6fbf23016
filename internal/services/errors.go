package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrTransport  = errors.New("transport error")
	ErrNotFound   = errors.New("not found")
	ErrJobFailed  = errors.New("job failed")
	ErrTimeout    = errors.New("timeout")
	ErrTransient  = errors.New("transient failure")
)

// Wrap builds an error message that includes operation context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether re-running the failed action unchanged can
// reasonably succeed. Validation and auth failures need user input first.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAuth):
		return false
	default:
		return true
	}
}

// UserHint maps an error to the advisory line the CLI prints beneath the
// failure. Polling timeouts get a distinct message because the backend job
// may still complete after the client gave up waiting.
func UserHint(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "the backend may still finish this job; check again with `maestro jobs status`"
	case errors.Is(err, ErrAuth):
		return "sign in again with `maestro login`"
	case errors.Is(err, ErrValidation):
		return "fix the reported input and re-run the command"
	case errors.Is(err, ErrJobFailed):
		return "re-trigger the generation once the reported problem is addressed"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
