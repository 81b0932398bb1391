package gamification

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a user has no gamification record yet.
	ErrNotFound = errors.New("gamification record not found")
	// ErrInvalidInput is returned before any state is touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageUnavailable marks retryable store failures, timeouts included.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storeErr classifies an error coming back from the store or the positions reader.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
