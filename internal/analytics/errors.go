package analytics

import (
	"fmt"
	"strings"
)

// StatusError is a non-200 reply from the analytics API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// Transient reports whether retrying the call may help. Server-side errors
// and rate limiting resolve on their own; the rest of the 4xx range is a
// contract problem retrying will not fix.
func (e *StatusError) Transient() bool {
	return e.Code >= 500 || e.Code == 429 || e.Code == 408
}

// ValidationError is a 200 reply whose body is missing required fields.
// It indicates a contract break in the remote service, never retried.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response: missing fields: %s", strings.Join(e.Missing, ", "))
}

// ExhaustedError is returned once every attempt of a call has failed with a
// transient error. Last carries the final observed failure.
type ExhaustedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
