package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrUnknownProvider indicates the provider ID is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the backend service is unavailable.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrContextTooLong indicates the input exceeds the context window.
	ErrContextTooLong = errors.New("context exceeds maximum length")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the request is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrCredentialsNotFound indicates the credential environment
	// variable named by the provider config is unset.
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrNoProviders indicates no registered provider matched a filter.
	ErrNoProviders = errors.New("no eligible providers")
)

// Error wraps provider call errors with context.
type Error struct {
	Provider  string // Provider ID
	Op        string // Operation that failed ("complete", "health_check")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new provider error.
func NewError(providerID, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  providerID,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is likely transient and worth retrying
// against another provider.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}
