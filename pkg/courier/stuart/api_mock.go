package stuart

import (
	"context"
	"fmt"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing and
// development. Individual operations can be overridden via the On* fields.
type MockAPIClient struct {
	// SimulateErrors makes every operation fail with a validation error.
	SimulateErrors bool

	// Optional overrides for individual operations.
	OnGetPricing func(ctx context.Context, req *JobPayload) (*PricingResponse, error)
	OnGetETA     func(ctx context.Context, req *JobPayload) (*ETAResponse, error)
	OnCreateJob  func(ctx context.Context, req *JobPayload) (*JobResponse, error)
}

// NewMockAPIClient creates a new mock API client.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GetPricing returns a mock price.
func (m *MockAPIClient) GetPricing(ctx context.Context, req *JobPayload) (*PricingResponse, error) {
	if m.OnGetPricing != nil {
		return m.OnGetPricing(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			ErrorCode:  ErrCodeRecordInvalid,
			Message:    "job is invalid",
			StatusCode: 422,
		}
	}
	return &PricingResponse{Amount: 12.50, Currency: "GBP"}, nil
}

// GetETA returns a mock ETA.
func (m *MockAPIClient) GetETA(ctx context.Context, req *JobPayload) (*ETAResponse, error) {
	if m.OnGetETA != nil {
		return m.OnGetETA(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			ErrorCode:  ErrCodeRecordInvalid,
			Message:    "job is invalid",
			StatusCode: 422,
		}
	}
	return &ETAResponse{ETASeconds: 1800}, nil
}

// CreateJob returns a mock created job.
func (m *MockAPIClient) CreateJob(ctx context.Context, req *JobPayload) (*JobResponse, error) {
	if m.OnCreateJob != nil {
		return m.OnCreateJob(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			ErrorCode:  ErrCodeRecordInvalid,
			Message:    "job is invalid",
			StatusCode: 422,
		}
	}

	now := time.Now()
	jobID := now.UnixNano()
	clientReference := ""
	if len(req.Job.Dropoffs) > 0 {
		clientReference = req.Job.Dropoffs[0].ClientReference
	}
	return &JobResponse{
		ID:        jobID,
		Status:    "new",
		PickupAt:  now.Add(10 * time.Minute).Format(time.RFC3339),
		DropoffAt: now.Add(40 * time.Minute).Format(time.RFC3339),
		Pricing:   JobPricing{PriceTaxIncluded: 15.00, Currency: "GBP"},
		Deliveries: []Delivery{
			{
				ID:              jobID + 1,
				ClientReference: clientReference,
				TrackingURL:     fmt.Sprintf("https://stuart.mock/track/%d", jobID),
				Status:          "pending",
			},
		},
	}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
