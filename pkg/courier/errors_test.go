package courier_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/stretchr/testify/assert"
)

func TestProviderError_Error(t *testing.T) {
	err := courier.NewProviderError("gophr", "ERROR_DISTANCE", "distance too large")
	assert.Equal(t, "gophr error (ERROR_DISTANCE): distance too large", err.Error())
}

func TestProviderError_ErrorWithCause(t *testing.T) {
	cause := errors.New("network timeout")
	err := courier.NewProviderError("stuart", "NETWORK", "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "network timeout")
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := courier.NewProviderError("stuart", "NETWORK", "API call failed").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestProviderError_Is(t *testing.T) {
	err1 := courier.NewProviderError("gophr", "ERROR_PHONE_NUMBER", "bad phone")
	err2 := courier.NewProviderError("stuart", "ERROR_PHONE_NUMBER", "different message")

	// Same code should match
	assert.True(t, errors.Is(err1, err2))
}

func TestProviderError_IsNot(t *testing.T) {
	err1 := courier.NewProviderError("gophr", "ERROR_PHONE_NUMBER", "bad phone")
	err2 := courier.NewProviderError("gophr", "ERROR_DISTANCE", "different error")

	assert.False(t, errors.Is(err1, err2))
}

func TestIsRetryable(t *testing.T) {
	transient := courier.NewProviderError("stuart", "NETWORK", "connection reset").WithRetryable(true)
	assert.True(t, courier.IsRetryable(transient))

	validation := courier.NewProviderError("gophr", "ERROR_DISTANCE", "too far").
		WithStatusCode(400).WithRetryable(false)
	assert.False(t, courier.IsRetryable(validation))

	assert.False(t, courier.IsRetryable(errors.New("plain error")))
}

func TestIsValidation(t *testing.T) {
	validation := courier.NewProviderError("gophr", "ERROR_PHONE_NUMBER", "bad phone").
		WithStatusCode(400).WithRetryable(false)
	assert.True(t, courier.IsValidation(validation))

	transient := courier.NewProviderError("stuart", "SERVER", "oops").
		WithStatusCode(503).WithRetryable(true)
	assert.False(t, courier.IsValidation(transient))

	assert.True(t, courier.IsValidation(fmt.Errorf("wrapped: %w", courier.ErrUnknownVehicleCode)))
	assert.True(t, courier.IsValidation(fmt.Errorf("wrapped: %w", courier.ErrDistanceExceeded)))
}

func TestJobCreationError(t *testing.T) {
	cause := courier.NewProviderError("gophr", "ERROR_DATETIME_INCORRECT", "pickup in the past")
	err := &courier.JobCreationError{ProviderID: "gophr", Cause: cause}

	assert.Contains(t, err.Error(), "gophr")
	assert.True(t, errors.Is(err, cause))
}
