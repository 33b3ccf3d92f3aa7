package stuart

import (
	"context"
	"fmt"
)

// APIClient defines the interface for Stuart API operations. The abstraction
// allows a mock implementation in tests and the real HTTP client in
// production.
type APIClient interface {
	// GetPricing returns the price for a prospective job.
	// POST /v2/jobs/pricing
	GetPricing(ctx context.Context, req *JobPayload) (*PricingResponse, error)

	// GetETA returns the estimated seconds to dropoff for a prospective job.
	// POST /v2/jobs/eta
	GetETA(ctx context.Context, req *JobPayload) (*ETAResponse, error)

	// CreateJob submits the job.
	// POST /v2/jobs
	CreateJob(ctx context.Context, req *JobPayload) (*JobResponse, error)
}

// ============================================================================
// API Request/Response Types (match Stuart REST API v2 structure)
// ============================================================================

// JobPayload wraps the nested job tree Stuart expects on every endpoint.
type JobPayload struct {
	Job JobDetails `json:"job"`
}

// JobDetails is the job tree with per-leg contact blocks.
type JobDetails struct {
	PickupAt       string    `json:"pickup_at,omitempty"` // ISO 8601
	AssignmentCode string    `json:"assignment_code"`
	Pickups        []Pickup  `json:"pickups"`
	Dropoffs       []Dropoff `json:"dropoffs"`
}

// Pickup is one pickup leg.
type Pickup struct {
	Address string  `json:"address"`
	Comment string  `json:"comment,omitempty"`
	Contact Contact `json:"contact"`
}

// Dropoff is one dropoff leg.
type Dropoff struct {
	PackageType        string  `json:"package_type"`
	PackageDescription string  `json:"package_description,omitempty"`
	ClientReference    string  `json:"client_reference"`
	Address            string  `json:"address"`
	Comment            string  `json:"comment,omitempty"`
	Contact            Contact `json:"contact"`
	TimeWindowStart    string  `json:"end_customer_time_window_start,omitempty"`
	TimeWindowEnd      string  `json:"end_customer_time_window_end,omitempty"`
}

// Contact is the per-leg contact block.
type Contact struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Company   string `json:"company,omitempty"`
}

// PricingResponse is the response from POST /v2/jobs/pricing.
type PricingResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ETAResponse is the response from POST /v2/jobs/eta.
type ETAResponse struct {
	ETASeconds int `json:"eta"`
}

// JobResponse is the response from POST /v2/jobs.
type JobResponse struct {
	ID         int64      `json:"id"`
	Status     string     `json:"status"`
	PickupAt   string     `json:"pickup_at,omitempty"`
	DropoffAt  string     `json:"dropoff_at,omitempty"`
	Pricing    JobPricing `json:"pricing"`
	Deliveries []Delivery `json:"deliveries"`
}

// JobPricing carries the charged price on a created job.
type JobPricing struct {
	PriceTaxIncluded float64 `json:"price_tax_included"`
	Currency         string  `json:"currency"`
}

// Delivery is one delivery inside a created job.
type Delivery struct {
	ID              int64  `json:"id"`
	ClientReference string `json:"client_reference"`
	TrackingURL     string `json:"tracking_url"`
	Status          string `json:"status"`
}

// APIError represents an error body from the Stuart API.
type APIError struct {
	ErrorCode  string              `json:"error"`
	Message    string              `json:"message"`
	Data       map[string][]string `json:"data,omitempty"` // field-level errors
	StatusCode int                 `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Error codes Stuart returns on 4xx responses.
const (
	ErrCodeRecordInvalid = "RECORD_INVALID"
	ErrCodeInvalidGrant  = "invalid_grant"
)
