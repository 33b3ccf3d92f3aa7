package gophr

import (
	"context"
	"time"
)

// MockAPIClient implements APIClient with canned responses for testing
// and development.
type MockAPIClient struct {
	// SimulateErrors makes all calls return validation errors.
	SimulateErrors bool

	// Optional overrides per call.
	OnGetQuote         func(ctx context.Context, req *QuoteRequest) (*QuoteResult, error)
	OnCreateConfirmJob func(ctx context.Context, req *JobRequest) (*JobResult, error)
}

// NewMockAPIClient creates a mock client with sensible defaults.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GetQuote returns a mock quote.
func (m *MockAPIClient) GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResult, error) {
	if m.OnGetQuote != nil {
		return m.OnGetQuote(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			Code:       ErrCodeDistance,
			Message:    "distance between pickup and delivery is too large",
			StatusCode: 200,
		}
	}
	return &QuoteResult{
		PriceNet:    9.75,
		PriceGross:  11.70,
		DeliveryETA: time.Now().Add(40 * time.Minute).UTC().Format(time.RFC3339),
	}, nil
}

// CreateConfirmJob returns a mock confirmed job.
func (m *MockAPIClient) CreateConfirmJob(ctx context.Context, req *JobRequest) (*JobResult, error) {
	if m.OnCreateConfirmJob != nil {
		return m.OnCreateConfirmJob(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			Code:       ErrCodePhoneNumber,
			Message:    "delivery_mobile_number is not a valid phone number",
			StatusCode: 200,
		}
	}
	now := time.Now().UTC()
	return &JobResult{
		JobID:            "GPH-MOCK-100001",
		PublicTrackerURL: "https://gophr.com/track/GPH-MOCK-100001",
		PriceGross:       11.70,
		PickupETA:        now.Add(15 * time.Minute).Format(time.RFC3339),
		DeliveryETA:      now.Add(45 * time.Minute).Format(time.RFC3339),
	}, nil
}

// Verify interface compliance.
var _ APIClient = (*MockAPIClient)(nil)
