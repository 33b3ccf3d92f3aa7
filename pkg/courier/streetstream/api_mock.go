package streetstream

import (
	"context"
	"net/http"
)

// MockAPIClient implements APIClient with canned responses for testing
// and development.
type MockAPIClient struct {
	// SimulateErrors makes all calls return errors.
	SimulateErrors bool

	// Optional overrides per call.
	OnGetEstimate func(ctx context.Context, req *EstimateRequest) (*EstimateResult, error)
	OnCreateJob   func(ctx context.Context, req *JobRequest) (*JobResult, error)
}

// NewMockAPIClient creates a mock client with sensible defaults.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GetEstimate returns a mock estimate.
func (m *MockAPIClient) GetEstimate(ctx context.Context, req *EstimateRequest) (*EstimateResult, error) {
	if m.OnGetEstimate != nil {
		return m.OnGetEstimate(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			Code:       ErrCodeBadRequest,
			Message:    "no couriers cover this postcode area",
			StatusCode: http.StatusBadRequest,
		}
	}
	return &EstimateResult{
		EstimatedCostVatExclusive: 10.40,
		EstimatedCostVatInclusive: 12.48,
	}, nil
}

// CreateJob returns a mock created job.
func (m *MockAPIClient) CreateJob(ctx context.Context, req *JobRequest) (*JobResult, error) {
	if m.OnCreateJob != nil {
		return m.OnCreateJob(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			Code:       ErrCodeBadRequest,
			Message:    "pickUp.contactNumber is required",
			StatusCode: http.StatusBadRequest,
		}
	}
	return &JobResult{
		ID:     "SS-MOCK-9001",
		Status: "NOT_STARTED",
		JobCharge: JobCharge{
			TotalPayableWithVat:    12.48,
			TotalPayableWithoutVat: 10.40,
		},
		EstimatedRouteTimeSeconds: 2100,
	}, nil
}

// Verify interface compliance.
var _ APIClient = (*MockAPIClient)(nil)
