package llm

import (
	"fmt"
	"strings"
)

// Error wraps a client failure with the operation that failed and whether a
// retry could plausibly succeed.
type Error struct {
	Op        string // "complete", "stream"
	Err       error
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a client error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether err is a retryable client error.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// retryableMessage classifies transient provider failures by message text.
func retryableMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "529")
}
