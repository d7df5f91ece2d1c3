package analytics

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/vietddude/orchestrator/internal/metrics"
)

// RetryConfig defines retry behavior. It is immutable and shared across
// calls; callers never mutate it.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults for a remote service that
// can be slow to spin up.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    5 * time.Second,
	MaxDelay:        20 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

// ClassifyError determines the action for a given error. Classification is
// structural: response-shape defects and non-transient statuses are fatal,
// everything else (transport errors, timeouts, 5xx) is worth retrying.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry // Should not happen
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return ActionFatal
	}

	var sErr *StatusError
	if errors.As(err, &sErr) {
		if sErr.Transient() {
			return ActionRetry
		}
		return ActionFatal
	}

	// Network-level failures (timeout, refused, reset) default to retry.
	return ActionRetry
}

// callWithRetry executes fn with exponential backoff. The first attempt
// runs immediately; before the k-th retry it sleeps
// min(InitialDelay * BackoffMultiple^k, MaxDelay). Attempts are strictly
// sequential; the call blocks for each attempt plus its backoff sleep.
func callWithRetry(ctx context.Context, op string, config RetryConfig, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		metrics.APICallsTotal.WithLabelValues(op).Inc()
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if ClassifyError(err) == ActionFatal {
			return err // Stop immediately, do not retry
		}

		if attempt == config.MaxAttempts-1 {
			break
		}

		metrics.APIRetriesTotal.WithLabelValues(op).Inc()
		delay := backoffDelay(attempt, config)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return &ExhaustedError{Op: op, Attempts: config.MaxAttempts, Last: lastErr}
}

func backoffDelay(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
