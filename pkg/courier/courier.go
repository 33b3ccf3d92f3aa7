// Package courier provides an abstraction layer for third-party courier networks.
package courier

import (
	"context"
)

// Provider defines the interface that all courier networks must implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "stuart", "gophr").
	Name() string

	// Quote returns a priced, time-bounded offer for a delivery request.
	Quote(ctx context.Context, req *DeliveryRequest) (*Quote, error)

	// CreateJob submits a delivery job to the provider.
	// It must be called at most once per job reference: provider-side job
	// creation is not guaranteed to be idempotent, so callers own the
	// duplicate-submission guard.
	CreateJob(ctx context.Context, req *CreateJobRequest) (*JobHandle, error)

	// TranslateStatus maps the provider's native status token to the
	// canonical job status. Unmapped tokens pass through unchanged.
	TranslateStatus(native string) JobStatus
}
