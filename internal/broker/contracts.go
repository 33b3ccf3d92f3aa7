// Package broker orchestrates delivery creation and webhook reconciliation
// across the registered courier providers.
package broker

import (
	"context"

	"github.com/seconds-app/courier-bridge/pkg/courier"
)

// Store persists jobs and owns the atomic finalization flag. Implementations
// must make FinalizeIfNotAlready a single test-and-set so concurrent
// completion events cannot both win.
type Store interface {
	// CreateJob persists a newly brokered job.
	CreateJob(ctx context.Context, job *courier.Job) error

	// FindJobByReference resolves a job by the reference shared with
	// providers that echo it back.
	FindJobByReference(ctx context.Context, reference string) (*courier.Job, error)

	// FindJobByProviderID resolves a job by a provider's own job id.
	FindJobByProviderID(ctx context.Context, provider, providerJobID string) (*courier.Job, error)

	// UpdateJob replaces the stored job.
	UpdateJob(ctx context.Context, job *courier.Job) error

	// NextOrderNumber returns the next job sequence number.
	NextOrderNumber(ctx context.Context) (int, error)

	// MarkSubmissionAttempt records that job submission was attempted for a
	// reference. Returns false when an attempt was already recorded.
	MarkSubmissionAttempt(ctx context.Context, reference string) (bool, error)

	// FinalizeIfNotAlready marks the job finalized and reports whether this
	// call was the first to do so.
	FinalizeIfNotAlready(ctx context.Context, reference string) (bool, error)
}

// Billing charges the brokerage commission once a delivery completes.
type Billing interface {
	ChargeCommission(ctx context.Context, customerRef, paymentRef string, fee courier.Money, description string) error
}

// Notifier tells the recipient their delivery completed.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) error
}

// DistanceFunc measures the route distance in miles between two addresses
// for the given travel mode. Geocoding and routing stay behind this seam.
type DistanceFunc func(ctx context.Context, pickup, dropoff courier.Address, mode courier.TravelMode) (float64, error)
