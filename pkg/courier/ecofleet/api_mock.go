package ecofleet

import (
	"context"
	"net/http"
	"time"
)

// MockAPIClient implements APIClient with canned responses for testing
// and development.
type MockAPIClient struct {
	// SimulateErrors makes all calls return errors.
	SimulateErrors bool

	// Optional overrides per call.
	OnGetQuote    func(ctx context.Context, req *OrderPayload) (*QuoteResult, error)
	OnCreateOrder func(ctx context.Context, req *OrderPayload) (*OrderResult, error)
}

// NewMockAPIClient creates a mock client with sensible defaults.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GetQuote returns a mock rate-card quote.
func (m *MockAPIClient) GetQuote(ctx context.Context, req *OrderPayload) (*QuoteResult, error) {
	if m.OnGetQuote != nil {
		return m.OnGetQuote(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			Code:       "OUT_OF_ZONE",
			Message:    "postcode is outside the service area",
			StatusCode: http.StatusBadRequest,
		}
	}
	return &QuoteResult{
		RateCard: RateCard{MinimumCost: 8.95, CostPerMile: 1.20},
		ETA:      time.Now().Add(50 * time.Minute).UTC().Format(time.RFC3339),
	}, nil
}

// CreateOrder returns a mock created order.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *OrderPayload) (*OrderResult, error) {
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}
	if m.SimulateErrors {
		return nil, &APIError{
			Code:       "INVALID_SCHEDULE",
			Message:    "pickup window must be in the future",
			StatusCode: http.StatusBadRequest,
		}
	}
	return &OrderResult{
		ID:       "ECO-MOCK-5001",
		Status:   "pending",
		RateCard: RateCard{MinimumCost: 8.95, CostPerMile: 1.20},
	}, nil
}

// Verify interface compliance.
var _ APIClient = (*MockAPIClient)(nil)
