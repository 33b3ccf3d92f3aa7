package courier

import (
	"errors"
	"fmt"
)

// ProviderError represents an error from a courier network's API, normalized
// into the canonical taxonomy.
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Provider, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ProviderError.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, code, message string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
	}
}

// WithCause adds a cause to the error.
func (e *ProviderError) WithCause(err error) *ProviderError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ProviderError) WithStatusCode(code int) *ProviderError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ProviderError) WithRetryable(retryable bool) *ProviderError {
	e.Retryable = retryable
	return e
}

// JobCreationError reports that the winning provider rejected job submission
// after quoting. No automatic fallback to the next-best quote is performed.
type JobCreationError struct {
	ProviderID string
	Cause      error
}

func (e *JobCreationError) Error() string {
	return fmt.Sprintf("job creation failed at %s: %v", e.ProviderID, e.Cause)
}

func (e *JobCreationError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for common brokering scenarios.
var (
	// ErrNoQuotesAvailable indicates every configured provider failed or
	// declined the request; distinct from an empty-but-successful result.
	ErrNoQuotesAvailable = errors.New("no quotes available")

	// ErrEmptyQuoteSet indicates selection was attempted over zero quotes.
	ErrEmptyQuoteSet = errors.New("empty quote set")

	// ErrUnknownStrategy indicates an unrecognized selection strategy.
	// Selection fails closed rather than silently defaulting.
	ErrUnknownStrategy = errors.New("unknown selection strategy")

	// ErrQuoteExpired indicates the quote has expired and cannot be used.
	ErrQuoteExpired = errors.New("quote has expired")

	// ErrProviderNotFound indicates the requested provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrUnknownWebhookSource indicates an event that matches no configured
	// provider; it is logged and discarded.
	ErrUnknownWebhookSource = errors.New("unknown webhook source")

	// ErrJobNotFound indicates no job matches the event's correlation key.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadySubmitted indicates a duplicate submission attempt for
	// the same job reference.
	ErrJobAlreadySubmitted = errors.New("job already submitted")

	// ErrUnknownVehicleCode indicates a vehicle code outside the allowed set.
	ErrUnknownVehicleCode = errors.New("unknown vehicle code")

	// ErrDistanceExceeded indicates no vehicle can cover the job distance.
	ErrDistanceExceeded = errors.New("job distance exceeds the maximum limit")
)

// IsRetryable returns true if the error is a transient provider failure that
// is safe to retry with backoff.
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// IsValidation returns true if the error is a caller-fixable validation
// failure (bad address, distance exceeded, malformed phone or datetime) that
// must not be retried.
func IsValidation(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return !provErr.Retryable && provErr.StatusCode >= 400 && provErr.StatusCode < 500
	}
	return errors.Is(err, ErrUnknownVehicleCode) || errors.Is(err, ErrDistanceExceeded)
}
